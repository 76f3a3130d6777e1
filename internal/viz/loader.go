// Package viz turns persisted availability tables into per-station daily
// coverage series and renders them as a bar chart. It reads through the same
// TableStore interface the scanner writes through, so either product backend
// can feed a chart.
package viz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/seisops/availability/internal/domain"
)

// TableReader loads a previously computed station/year availability table.
type TableReader interface {
	ReadTable(ctx context.Context, network, station string, year int) (*domain.Table, error)
}

// Point is one day's coverage for a station. Days with multiple channels are
// averaged; days with no table row are absent, never synthesised.
type Point struct {
	Date     time.Time
	Coverage float64
}

// Loader assembles daily coverage series from persisted tables.
type Loader struct {
	reader TableReader
	logger *slog.Logger
}

func NewLoader(reader TableReader, logger *slog.Logger) *Loader {
	return &Loader{reader: reader, logger: logger}
}

// LoadSeries builds one series per station ID over [start, end] inclusive.
// Any station with no data at all in the range fails the load with
// ErrEmptyRange.
func (l *Loader) LoadSeries(ctx context.Context, stations []string, start, end time.Time) (map[string][]Point, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s",
			domain.ErrInvalidRange, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	series := make(map[string][]Point, len(stations))
	for _, stationID := range stations {
		network, station, err := domain.ParseStationID(stationID)
		if err != nil {
			return nil, err
		}
		points, err := l.loadStationSeries(ctx, network, station, start, end)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", stationID, err)
		}
		series[stationID] = points
	}
	return series, nil
}

// loadStationSeries concatenates the station's tables for every year touching
// the range. Years with no persisted table are skipped; a range that ends up
// with zero rows is ErrEmptyRange.
func (l *Loader) loadStationSeries(ctx context.Context, network, station string, start, end time.Time) ([]Point, error) {
	type accum struct {
		sum   float64
		count int
	}
	byDate := make(map[time.Time]*accum)

	for year := start.Year(); year <= end.Year(); year++ {
		table, err := l.reader.ReadTable(ctx, network, station, year)
		if errors.Is(err, domain.ErrNotFound) {
			l.logger.Debug("no availability table", "network", network, "station", station, "year", year)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, row := range table.Rows {
			if row.Date.Before(start) || row.Date.After(end) {
				continue
			}
			a := byDate[row.Date]
			if a == nil {
				a = &accum{}
				byDate[row.Date] = a
			}
			a.sum += row.Coverage
			a.count++
		}
	}

	if len(byDate) == 0 {
		return nil, domain.ErrEmptyRange
	}

	points := make([]Point, 0, len(byDate))
	for date, a := range byDate {
		points = append(points, Point{Date: date, Coverage: a.sum / float64(a.count)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
