package server

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.CampaignDB != "campaign.db" {
		t.Fatalf("expected default campaign db path, got %q", cfg.CampaignDB)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ADVENTURING_PARTY_PORT", "9090")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9091", "-notifications-db", "inbox.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9091 {
		t.Fatalf("expected port override 9091, got %d", cfg.Port)
	}
	if cfg.NotificationsDB != "inbox.db" {
		t.Fatalf("expected notifications db override, got %q", cfg.NotificationsDB)
	}
}
