package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.campaign.unnamed", "a campaign")
	message.SetString(lang, "notification.character.unnamed", "A character")
	message.SetString(lang, "notification.campaign_invite.title", "Campaign invitation")
	message.SetString(lang, "notification.campaign_invite.body", "You have been invited to join %s.")
	message.SetString(lang, "notification.character_pending.title", "Join request awaiting approval")
	message.SetString(lang, "notification.character_pending.body", "%s wants to join %s.")
	message.SetString(lang, "notification.character_approved.title", "Character approved")
	message.SetString(lang, "notification.character_approved.body", "%s has been admitted to %s.")
	message.SetString(lang, "notification.character_rejected.title", "Character not admitted")
	message.SetString(lang, "notification.character_rejected.body", "%s was not admitted to %s.")
	message.SetString(lang, "notification.new_party_member.title", "New party member")
	message.SetString(lang, "notification.new_party_member.body", "%s has joined %s.")
	message.SetString(lang, "notification.character_left.title", "Character left the party")
	message.SetString(lang, "notification.character_left.body", "%s has stepped back from %s.")
	message.SetString(lang, "notification.character_deceased.title", "Character deceased")
	message.SetString(lang, "notification.character_deceased.body", "%s has fallen in %s.")
}
