package setup

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/davidrzs/Timeboard/internal/calendar/application"
	"github.com/davidrzs/Timeboard/internal/calendar/infrastructure/caldavcal"
	"github.com/davidrzs/Timeboard/internal/calendar/infrastructure/googlecal"
	"github.com/davidrzs/Timeboard/pkg/config"
)

// NewProvider picks the calendar provider from configuration. Google
// wins when OAuth credentials are set, then CalDAV; with neither
// configured there is no provider and calendar sync stays off.
func NewProvider(cfg *config.Config, logger *slog.Logger) application.Provider {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.GoogleClientID != "" && cfg.GoogleRefreshToken != "" {
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
		}
		source := oauthCfg.TokenSource(context.Background(),
			&oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
		logger.Debug("using Google Calendar provider")
		return googlecal.NewProvider(oauth2.ReuseTokenSource(nil, source), logger)
	}

	if cfg.CalDAVEndpoint != "" {
		logger.Debug("using CalDAV provider", "endpoint", cfg.CalDAVEndpoint)
		return caldavcal.NewProvider(cfg.CalDAVEndpoint, cfg.CalDAVUsername, cfg.CalDAVPassword, logger).
			WithWindow(cfg.SyncWindowPast, cfg.SyncWindowFuture)
	}

	return nil
}
