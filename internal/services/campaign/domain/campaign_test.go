package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCreateCampaign(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	campaign, err := CreateCampaign(CreateCampaignInput{
		Name:    "  Curse of the Amber Court  ",
		Setting: "Forgotten Realms",
		Edition: "5e",
		OwnerID: "owner-1",
	}, fixedClock(now), fixedID("camp-1"))
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if campaign.ID != "camp-1" {
		t.Fatalf("id = %q", campaign.ID)
	}
	if campaign.Name != "Curse of the Amber Court" {
		t.Fatalf("name = %q, want trimmed", campaign.Name)
	}
	if campaign.OwnerID != "owner-1" {
		t.Fatalf("owner id = %q", campaign.OwnerID)
	}
	if !campaign.CreatedAt.Equal(now) || !campaign.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", campaign.CreatedAt, campaign.UpdatedAt, now)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	t.Parallel()

	if _, err := CreateCampaign(CreateCampaignInput{OwnerID: "owner-1"}, nil, fixedID("camp-1")); !errors.Is(err, ErrEmptyCampaignName) {
		t.Fatalf("err = %v, want %v", err, ErrEmptyCampaignName)
	}
	if _, err := CreateCampaign(CreateCampaignInput{Name: "Table"}, nil, fixedID("camp-1")); !errors.Is(err, ErrEmptyOwnerID) {
		t.Fatalf("err = %v, want %v", err, ErrEmptyOwnerID)
	}
}
