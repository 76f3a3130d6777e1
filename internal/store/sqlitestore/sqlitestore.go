// Package sqlitestore persists availability tables in a single SQLite
// database instead of per-year CSV files, for deployments that want to query
// coverage with SQL. Selected by the product.backend config key; the row
// ordering and (date, channel) uniqueness guarantees match the CSV store.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seisops/availability/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// tableRow is the persisted form of one availability row. Dates are stored
// as ISO strings so lexicographic order matches chronological order.
type tableRow struct {
	Network  string `gorm:"primaryKey;size:8"`
	Station  string `gorm:"primaryKey;size:8"`
	Year     int    `gorm:"primaryKey"`
	Date     string `gorm:"primaryKey;size:10"`
	Location string `gorm:"primaryKey;size:8"`
	Code     string `gorm:"primaryKey;size:8"`
	Coverage float64
}

func (tableRow) TableName() string { return "availability" }

// Store reads and writes availability tables in a SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&tableRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WriteTable replaces all rows for the table's station/year in one
// transaction, making re-runs idempotent.
func (s *Store) WriteTable(ctx context.Context, table *domain.Table) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("refusing to persist malformed table for %s.%d: %v",
			table.StationID(), table.Year, err)
	}

	rows := make([]tableRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, tableRow{
			Network:  table.Network,
			Station:  table.Station,
			Year:     table.Year,
			Date:     row.Date.Format(time.DateOnly),
			Location: row.Channel.Location,
			Code:     row.Channel.Code,
			Coverage: row.Coverage,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("network = ? AND station = ? AND year = ?",
			table.Network, table.Station, table.Year).Delete(&tableRow{}).Error; err != nil {
			return fmt.Errorf("clear previous table: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("insert table rows: %w", err)
		}
		return nil
	})
}

// ReadTable loads a station/year table in canonical order. Returns
// ErrNotFound if no rows exist for it.
func (s *Store) ReadTable(ctx context.Context, network, station string, year int) (*domain.Table, error) {
	var rows []tableRow
	err := s.db.WithContext(ctx).
		Where("network = ? AND station = ? AND year = ?", network, station, year).
		Order("date, location, code").
		Find(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("read table %s.%s year %d: %w", network, station, year, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s.%s year %d", domain.ErrNotFound, network, station, year)
	}

	table := &domain.Table{Network: network, Station: station, Year: year}
	for _, row := range rows {
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %v", row.Date, err)
		}
		table.Rows = append(table.Rows, domain.Row{
			Date: date,
			Channel: domain.ChannelID{
				Network:  row.Network,
				Station:  row.Station,
				Location: row.Location,
				Code:     row.Code,
			},
			Coverage: row.Coverage,
		})
	}
	return table, nil
}
