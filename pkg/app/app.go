// Package app wires configuration, storage and the HTTP handlers together
// for the server binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/auth"
	"github.com/arnavshah/shift-relay-go/pkg/config"
	"github.com/arnavshah/shift-relay-go/pkg/database"
	"github.com/arnavshah/shift-relay-go/pkg/handlers"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/store"
	"github.com/arnavshah/shift-relay-go/pkg/store/filestore"
)

// App holds the long-lived pieces of a running service
type App struct {
	Store   store.Store
	Handler *handlers.Handler
}

// OpenStore opens the backend selected by cfg.StoreDriver
func OpenStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "file":
		return filestore.Open(cfg.DataPath)
	case "sqlite":
		return database.InitDB("sqlite", cfg.DataPath)
	case "postgres":
		return database.InitDB("postgres", cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// New opens and seeds the store and builds the handler set
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	err = store.Seed(ctx, s, store.SeedOptions{
		AdminName:       cfg.AdminUsername,
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		DefaultPassword: cfg.DefaultPassword,
		Now:             time.Now().In(loc),
	}, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	logger.Info("Store ready",
		zap.String("driver", cfg.StoreDriver),
		zap.String("timezone", loc.String()))

	return &App{
		Store: s,
		Handler: &handlers.Handler{
			Store:               s,
			Tracker:             presence.NewTracker(presence.WithLogger(logger)),
			Signer:              auth.NewSigner(cfg.JWTSecret),
			Logger:              logger,
			Location:            loc,
			NotifyMinutesBefore: cfg.NotifyMinutesBefore,
		},
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
