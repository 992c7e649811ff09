// Package server parses campaign API flags and launches the service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/adventuring.party/internal/platform/config"
	"github.com/louisbranch/adventuring.party/internal/platform/otel"
	"github.com/louisbranch/adventuring.party/internal/platform/session"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/api/rest"
	"github.com/louisbranch/adventuring.party/internal/services/campaign/app"
	campaignsqlite "github.com/louisbranch/adventuring.party/internal/services/campaign/storage/sqlite"
	notifdomain "github.com/louisbranch/adventuring.party/internal/services/notifications/domain"
	notifsqlite "github.com/louisbranch/adventuring.party/internal/services/notifications/storage/sqlite"
)

const serviceName = "campaign-api"

// Config holds campaign API command configuration.
type Config struct {
	Port            int    `env:"ADVENTURING_PARTY_PORT" envDefault:"8080"`
	CampaignDB      string `env:"ADVENTURING_PARTY_CAMPAIGN_DB" envDefault:"campaign.db"`
	NotificationsDB string `env:"ADVENTURING_PARTY_NOTIFICATIONS_DB" envDefault:"notifications.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The campaign API port")
	fs.StringVar(&cfg.CampaignDB, "campaign-db", cfg.CampaignDB, "Path to the campaign sqlite database")
	fs.StringVar(&cfg.NotificationsDB, "notifications-db", cfg.NotificationsDB, "Path to the notifications sqlite database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the campaign API service and blocks until ctx is cancelled or
// the server fails.
func Run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	grants, err := session.LoadGrantConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load session grant config: %w", err)
	}

	campaignStore, err := campaignsqlite.Open(cfg.CampaignDB)
	if err != nil {
		return fmt.Errorf("open campaign store: %w", err)
	}
	defer func() {
		if err := campaignStore.Close(); err != nil {
			log.Printf("close campaign store: %v", err)
		}
	}()

	notifStore, err := notifsqlite.Open(cfg.NotificationsDB)
	if err != nil {
		return fmt.Errorf("open notifications store: %w", err)
	}
	defer func() {
		if err := notifStore.Close(); err != nil {
			log.Printf("close notifications store: %v", err)
		}
	}()

	notifications := notifdomain.NewService(notifStore, nil, nil)
	notifier := app.NewInboxNotifier(notifications)
	audit := app.NewAuditEmitter(campaignStore, nil)
	roles := app.NewRoleService(campaignStore, campaignStore)
	campaigns := app.NewCampaignService(campaignStore, campaignStore, roles, audit, nil, nil)
	membership := app.NewMembershipService(campaignStore, campaignStore, campaignStore, roles, notifier, audit, nil, nil)
	invites := app.NewInviteService(campaignStore, campaignStore, campaignStore, campaignStore, membership, roles, notifier, audit, nil, nil)

	handler := rest.NewHandler(rest.Deps{
		Campaigns:     campaigns,
		Membership:    membership,
		Invites:       invites,
		Notifications: notifications,
		SessionGrants: grants,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("campaign API listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve campaign API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown campaign API: %w", err)
	}
	return nil
}
