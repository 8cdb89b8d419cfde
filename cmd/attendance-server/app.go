package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store/postgres"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store/sqlite"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
	"github.com/liyanaidrs/CPC357-Assign2/internal/config"
	dbpkg "github.com/liyanaidrs/CPC357-Assign2/internal/db"
	"github.com/liyanaidrs/CPC357-Assign2/internal/logging"
)

// backend is what the commands need from a store: the pipeline interfaces
// plus seeding and schema reporting.
type backend interface {
	store.Store
	store.Seeder
	store.SchemaReporter
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.With("service", "attendance-server"), nil
}

// openStore connects to the configured backend. Both drivers apply pending
// migrations on open.
func openStore(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.DB.Driver {
	case "sqlite":
		st, err := sqlite.Open(ctx, dbpkg.Config{
			Path:           cfg.DB.Path,
			ConnectTimeout: cfg.DB.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := postgres.Open(ctx, postgres.Config{
			URL:            cfg.DB.URL,
			MaxOpenConns:   cfg.DB.MaxOpenConns,
			ConnectTimeout: cfg.DB.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}
}

func devIdentities() []types.IdentityRecord {
	out := make([]types.IdentityRecord, 0, len(dbpkg.DefaultDevIdentities))
	for _, id := range dbpkg.DefaultDevIdentities {
		out = append(out, types.IdentityRecord{
			Identifier:   id.Identifier,
			DisplayName:  id.DisplayName,
			AccountState: types.AccountState(id.AccountState),
		})
	}
	return out
}
