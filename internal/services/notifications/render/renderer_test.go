package render

import (
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
)

func TestRenderCampaignInviteEnglish(t *testing.T) {
	loc := message.NewPrinter(language.English)

	out := Render(loc, Input{
		Type:        domain.TypeCampaignInvite,
		PayloadJSON: `{"campaign_name":"The Sunken Vault"}`,
	})
	if out.Title != "Campaign invitation" {
		t.Fatalf("Title = %q", out.Title)
	}
	if out.BodyText != "You have been invited to join The Sunken Vault." {
		t.Fatalf("BodyText = %q", out.BodyText)
	}
}

func TestRenderCharacterDeceasedPortuguese(t *testing.T) {
	loc := message.NewPrinter(language.BrazilianPortuguese)

	out := Render(loc, Input{
		Type:        domain.TypeCharacterDeceased,
		PayloadJSON: `{"character_name":"Aldric","campaign_name":"A Cripta"}`,
	})
	if out.Title != "Personagem morreu" {
		t.Fatalf("Title = %q", out.Title)
	}
	if out.BodyText != "Aldric caiu em A Cripta." {
		t.Fatalf("BodyText = %q", out.BodyText)
	}
}

func TestRenderUnknownTypeFallsBackToGeneric(t *testing.T) {
	loc := message.NewPrinter(language.English)

	out := Render(loc, Input{Type: "session.rsvp", PayloadJSON: `{}`})
	if out.Title != defaultGenericTitle {
		t.Fatalf("Title = %q, want generic", out.Title)
	}
	if out.BodyText != defaultGenericBody {
		t.Fatalf("BodyText = %q, want generic", out.BodyText)
	}
}

func TestRenderMalformedPayloadFallsBackToGeneric(t *testing.T) {
	loc := message.NewPrinter(language.English)

	out := Render(loc, Input{Type: domain.TypeNewPartyMember, PayloadJSON: `{not json`})
	if out.Title != defaultGenericTitle {
		t.Fatalf("Title = %q, want generic", out.Title)
	}
}

func TestRenderMissingNamesUsePlaceholders(t *testing.T) {
	loc := message.NewPrinter(language.English)

	out := Render(loc, Input{Type: domain.TypeNewPartyMember, PayloadJSON: `{}`})
	if out.BodyText != "A character has joined a campaign." {
		t.Fatalf("BodyText = %q", out.BodyText)
	}
}

func TestRenderNilLocalizerStillReturnsCopy(t *testing.T) {
	out := Render(nil, Input{Type: "unknown"})
	if out.Title == "" || out.BodyText == "" {
		t.Fatalf("nil localizer output = %+v, want non-empty copy", out)
	}
}
