// Package csvstore persists availability tables as CSV files in the product
// archive:
//
//	<root>/timeseries/<source>/availability/<year>/<net>/<sta>/NW.STA.<year>.availability.csv
//
// Rows carry the date, network, station, location+channel code, and the
// coverage fraction with four decimal places so outputs diff cleanly across
// runs. Writes go to a temp file renamed into place, so concurrent scans and
// readers never observe a partial table.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seisops/availability/internal/domain"
)

var header = []string{"Date", "Network", "Station", "Channel", "Availability"}

// Store reads and writes availability tables under a product root.
type Store struct {
	root   string
	source string
}

// New creates a Store for one product subtree, e.g. source "seismic".
func New(root, source string) *Store {
	return &Store{root: root, source: source}
}

func (s *Store) tablePath(network, station string, year int) string {
	return filepath.Join(
		s.root, "timeseries", s.source, "availability",
		strconv.Itoa(year), network, station,
		fmt.Sprintf("%s.%s.%d.availability.csv", network, station, year),
	)
}

// WriteTable persists a table, replacing any previous file for the same
// station/year. Tables violating the ordering or uniqueness invariants are
// refused.
func (s *Store) WriteTable(_ context.Context, table *domain.Table) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("refusing to persist malformed table for %s.%d: %v",
			table.StationID(), table.Year, err)
	}

	target := s.tablePath(table.Network, table.Station, table.Year)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create product directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".availability-*.csv")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range table.Rows {
		record := []string{
			row.Date.Format(time.DateOnly),
			row.Channel.Network,
			row.Channel.Station,
			row.Channel.Location + "." + row.Channel.Code,
			strconv.FormatFloat(row.Coverage, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

// ReadTable loads a persisted table, preserving row order exactly. Returns
// ErrNotFound if the station/year was never computed.
func (s *Store) ReadTable(_ context.Context, network, station string, year int) (*domain.Table, error) {
	path := s.tablePath(network, station, year)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s.%s year %d", domain.ErrNotFound, network, station, year)
	}
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	if len(records) == 0 || records[0][0] != header[0] {
		return nil, fmt.Errorf("parse table %s: missing header", path)
	}

	table := &domain.Table{Network: network, Station: station, Year: year}
	for _, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("parse table %s: %w", path, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseRow(record []string) (domain.Row, error) {
	date, err := time.Parse(time.DateOnly, record[0])
	if err != nil {
		return domain.Row{}, fmt.Errorf("date %q: %v", record[0], err)
	}
	location, code, ok := strings.Cut(record[3], ".")
	if !ok {
		return domain.Row{}, fmt.Errorf("channel %q: want LOCATION.CODE", record[3])
	}
	coverage, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return domain.Row{}, fmt.Errorf("coverage %q: %v", record[4], err)
	}
	return domain.Row{
		Date: date,
		Channel: domain.ChannelID{
			Network:  record[1],
			Station:  record[2],
			Location: location,
			Code:     code,
		},
		Coverage: coverage,
	}, nil
}
