// Package render produces localized inbox copy for stored notifications.
package render

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/message"

	"github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

const (
	defaultGenericTitle = "Notification"
	defaultGenericBody  = "You have a new notification."
)

// Input is one render request for a stored notification.
type Input struct {
	Type        string
	PayloadJSON string
}

// Output is localized copy derived from one notification.
type Output struct {
	Title    string
	BodyText string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Render returns localized copy for one notification. Payloads that fail to
// decode fall back to generic copy rather than erroring; the inbox always
// shows something.
func Render(loc Localizer, input Input) Output {
	switch strings.TrimSpace(input.Type) {
	case domain.TypeCampaignInvite:
		payload := domain.CampaignInvitePayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.campaign_invite.title"),
			BodyText: localize(loc, "notification.campaign_invite.body", campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeCharacterPendingApproval:
		payload := domain.CharacterPendingApprovalPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.character_pending.title"),
			BodyText: localize(loc, "notification.character_pending.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeCharacterApproved:
		payload := domain.CharacterDecisionPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.character_approved.title"),
			BodyText: localize(loc, "notification.character_approved.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeCharacterRejected:
		payload := domain.CharacterDecisionPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.character_rejected.title"),
			BodyText: localize(loc, "notification.character_rejected.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeNewPartyMember:
		payload := domain.NewPartyMemberPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.new_party_member.title"),
			BodyText: localize(loc, "notification.new_party_member.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeCharacterLeft:
		payload := domain.CharacterStatusPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.character_left.title"),
			BodyText: localize(loc, "notification.character_left.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	case domain.TypeCharacterDeceased:
		payload := domain.CharacterStatusPayload{}
		if !decodeInto(input.PayloadJSON, &payload) {
			return genericOutput(loc)
		}
		return Output{
			Title:    localize(loc, "notification.character_deceased.title"),
			BodyText: localize(loc, "notification.character_deceased.body", characterName(loc, payload.CharacterName), campaignName(loc, payload.CampaignName)),
		}
	default:
		return genericOutput(loc)
	}
}

func decodeInto(payloadJSON string, target any) bool {
	raw := strings.TrimSpace(payloadJSON)
	if raw == "" {
		return true
	}
	return json.Unmarshal([]byte(raw), target) == nil
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title:    localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
		BodyText: localizeWithFallback(loc, "notification.generic.body", defaultGenericBody),
	}
}

func campaignName(loc Localizer, raw string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return localizeWithFallback(loc, "notification.campaign.unnamed", "a campaign")
}

func characterName(loc Localizer, raw string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return localizeWithFallback(loc, "notification.character.unnamed", "A character")
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}
