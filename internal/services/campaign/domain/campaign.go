package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/adventuring.party/internal/platform/id"
)

var (
	// ErrEmptyCampaignName indicates a missing campaign name.
	ErrEmptyCampaignName = errors.New("campaign name is required")
	// ErrEmptyOwnerID indicates a missing campaign owner.
	ErrEmptyOwnerID = errors.New("campaign owner id is required")
)

// Campaign represents one game table owned by a single admin user.
type Campaign struct {
	ID        string
	Name      string
	Setting   string
	Edition   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCampaignInput describes the metadata needed to create a campaign.
type CreateCampaignInput struct {
	Name    string
	Setting string
	Edition string
	OwnerID string
}

// CreateCampaign creates a new campaign with a generated ID and timestamps.
func CreateCampaign(input CreateCampaignInput, now func() time.Time, idGenerator func() (string, error)) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateCampaignInput(input)
	if err != nil {
		return Campaign{}, err
	}

	campaignID, err := idGenerator()
	if err != nil {
		return Campaign{}, fmt.Errorf("generate campaign id: %w", err)
	}

	createdAt := now().UTC()
	return Campaign{
		ID:        campaignID,
		Name:      normalized.Name,
		Setting:   normalized.Setting,
		Edition:   normalized.Edition,
		OwnerID:   normalized.OwnerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateCampaignInput trims and validates campaign input metadata.
func NormalizeCreateCampaignInput(input CreateCampaignInput) (CreateCampaignInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateCampaignInput{}, ErrEmptyCampaignName
	}
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return CreateCampaignInput{}, ErrEmptyOwnerID
	}
	input.Setting = strings.TrimSpace(input.Setting)
	input.Edition = strings.TrimSpace(input.Edition)
	return input, nil
}
