package main

import (
	"context"
	"path/filepath"

	"github.com/seisops/availability/internal/config"
	"github.com/seisops/availability/internal/domain"
	"github.com/seisops/availability/internal/store/csvstore"
	"github.com/seisops/availability/internal/store/sqlitestore"
)

// tableStore is the read/write surface both subcommands need from a product
// backend.
type tableStore interface {
	WriteTable(ctx context.Context, table *domain.Table) error
	ReadTable(ctx context.Context, network, station string, year int) (*domain.Table, error)
}

// openStore builds the configured product backend. The returned closer is a
// no-op for the CSV store.
func openStore(cfg *config.Config, source string) (tableStore, func() error, error) {
	if cfg.Product.Backend == "sqlite" {
		store, err := sqlitestore.Open(filepath.Join(cfg.Product.Path, "availability.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return csvstore.New(cfg.Product.Path, source), func() error { return nil }, nil
}
