// Package scanner drives the availability pipeline: for each (station, year)
// unit it retrieves record intervals from the archive, merges them, windows
// the year into days, computes per-day coverage, and persists one
// availability table per unit.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seisops/availability/internal/domain"
	"github.com/seisops/availability/internal/observability"
)

// RecordSource retrieves channels and record intervals from the waveform
// archive. ListChannels expands the channel pattern to concrete identifiers;
// ReadIntervals returns an empty slice when a channel has no data for the
// year (a valid result, not an error).
type RecordSource interface {
	ListChannels(ctx context.Context, network, station string, year int, pattern string) ([]domain.ChannelID, error)
	ReadIntervals(ctx context.Context, ch domain.ChannelID, year int) ([]domain.Interval, error)
}

// TableWriter persists a completed availability table. WriteTable is
// idempotent: re-running a scan for the same station/year overwrites.
type TableWriter interface {
	WriteTable(ctx context.Context, table *domain.Table) error
}

// TablePublisher forwards completed tables to a downstream consumer.
// Publishing is best-effort; failures must not fail the unit.
type TablePublisher interface {
	PublishTable(ctx context.Context, table *domain.Table) error
}

// Unit is one independent piece of scan work: one station for one year.
// Units touch disjoint archive data and disjoint output tables, so they are
// safe to run in parallel and idempotent to re-run.
type Unit struct {
	Network string
	Station string
	Year    int
}

func (u Unit) String() string {
	return u.Network + "." + u.Station + "." + strconv.Itoa(u.Year)
}

// UnitsFor expands configured station IDs and years into the work-unit list.
func UnitsFor(stations []string, years []int) ([]Unit, error) {
	units := make([]Unit, 0, len(stations)*len(years))
	for _, year := range years {
		for _, id := range stations {
			network, station, err := domain.ParseStationID(id)
			if err != nil {
				return nil, err
			}
			units = append(units, Unit{Network: network, Station: station, Year: year})
		}
	}
	return units, nil
}

// UnitError records a failed unit for the end-of-run summary.
type UnitError struct {
	Unit Unit
	Err  error
}

// Summary reports the outcome of a scan run. Failures are collected rather
// than aborting the run; one bad station/year never takes down the rest.
type Summary struct {
	Completed []Unit
	Failed    []UnitError
}

// Options configures a Scanner beyond its collaborators.
type Options struct {
	// Pattern is the configured channel code pattern, possibly with
	// shell-style wildcards. Expansion happens in the RecordSource.
	Pattern string
	// Workers is the number of concurrent units. Values < 1 mean 1.
	Workers int
	// UnitTimeout bounds retrieval and persistence for one unit. A timeout
	// fails that unit only. Values <= 0 mean no timeout.
	UnitTimeout time.Duration
	// Publisher, when non-nil, receives each table after it is persisted.
	Publisher TablePublisher
}

// Scanner orchestrates scan units against a record source and a table store.
type Scanner struct {
	source      RecordSource
	store       TableWriter
	publisher   TablePublisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	pattern     string
	workers     int
	unitTimeout time.Duration

	ready     atomic.Bool
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a Scanner with the given collaborators and options.
func New(source RecordSource, store TableWriter, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		source:      source,
		store:       store,
		publisher:   opts.Publisher,
		logger:      logger,
		metrics:     metrics,
		pattern:     opts.Pattern,
		workers:     workers,
		unitTimeout: opts.UnitTimeout,
	}
}

// CheckReadiness returns nil once at least one unit has completed, or an
// error describing why the scan is not yet making progress.
func (s *Scanner) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no scan unit has completed yet")
	}
	return nil
}

// Progress returns the number of units completed and failed so far.
func (s *Scanner) Progress() (completed, failed int64) {
	return s.completed.Load(), s.failed.Load()
}

// Run processes the units with the configured number of workers and returns
// a summary of completed and failed units. Per-unit failures are isolated;
// Run itself only stops early on context cancellation, returning the summary
// of whatever finished.
func (s *Scanner) Run(ctx context.Context, units []Unit) (Summary, error) {
	s.logger.Info("scan starting",
		"units", len(units), "workers", s.workers, "pattern", s.pattern)
	s.metrics.ScanRunning.Set(1)
	defer s.metrics.ScanRunning.Set(0)

	jobs := make(chan Unit)
	results := make(chan UnitError, len(units))

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range jobs {
				results <- UnitError{Unit: unit, Err: s.processUnit(ctx, unit)}
			}
		}()
	}

feed:
	for _, unit := range units {
		select {
		case jobs <- unit:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var summary Summary
	for res := range results {
		if res.Err != nil {
			summary.Failed = append(summary.Failed, res)
			continue
		}
		summary.Completed = append(summary.Completed, res.Unit)
	}

	s.logger.Info("scan finished",
		"completed", len(summary.Completed), "failed", len(summary.Failed))
	for _, f := range summary.Failed {
		s.logger.Error("unit failed", "unit", f.Unit.String(), "error", f.Err)
	}
	return summary, ctx.Err()
}

// processUnit scans one unit, persists its table, and publishes it. The
// returned error marks the unit failed in the summary.
func (s *Scanner) processUnit(ctx context.Context, unit Unit) error {
	if s.unitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.unitTimeout)
		defer cancel()
	}

	start := time.Now()
	table, err := s.scanUnit(ctx, unit)
	if err != nil {
		s.metrics.UnitsFailed.Inc()
		s.failed.Add(1)
		return err
	}

	if err := s.store.WriteTable(ctx, table); err != nil {
		s.metrics.UnitsFailed.Inc()
		s.failed.Add(1)
		return fmt.Errorf("write table for %s: %w", unit, err)
	}
	s.metrics.RowsWritten.Add(float64(len(table.Rows)))

	if s.publisher != nil {
		if err := s.publisher.PublishTable(ctx, table); err != nil {
			s.logger.Warn("publish table failed", "unit", unit.String(), "error", err)
		}
	}

	s.metrics.UnitsCompleted.Inc()
	s.metrics.UnitDuration.Observe(time.Since(start).Seconds())
	s.completed.Add(1)
	s.ready.Store(true)
	s.logger.Info("unit complete",
		"unit", unit.String(), "rows", len(table.Rows), "duration", time.Since(start))
	return nil
}

// scanUnit computes the availability table for one unit. An archive failure
// fails the whole unit; an invalid interval fails only its channel.
func (s *Scanner) scanUnit(ctx context.Context, unit Unit) (*domain.Table, error) {
	channels, err := s.source.ListChannels(ctx, unit.Network, unit.Station, unit.Year, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("list channels for %s: %w", unit, err)
	}
	if len(channels) == 0 {
		if ch, ok := s.concreteChannel(unit); ok {
			// A concrete pattern names its channel even when the archive holds
			// no data: the year still gets a full table of zero coverage.
			channels = []domain.ChannelID{ch}
		} else {
			s.logger.Warn("no channels match pattern; table will be empty",
				"unit", unit.String(), "pattern", s.pattern)
		}
	}

	scanStart, scanEnd := domain.YearRange(unit.Year)
	windows, err := domain.Windows(scanStart, scanEnd)
	if err != nil {
		return nil, err
	}

	table := domain.NewTable(unit.Network, unit.Station, unit.Year)
	for _, ch := range channels {
		intervals, err := s.source.ReadIntervals(ctx, ch, unit.Year)
		if errors.Is(err, domain.ErrInvalidInterval) {
			s.logger.Warn("skipping channel with invalid records",
				"channel", ch.String(), "error", err)
			s.metrics.ChannelsSkipped.Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read intervals for %s: %w", ch, err)
		}
		s.metrics.IntervalsRead.Add(float64(len(intervals)))

		merged := domain.Merge(intervals)
		for _, w := range windows {
			coverage, clamped := domain.Coverage(w, merged, scanStart, scanEnd)
			if clamped {
				s.logger.Warn("coverage clamped, archive returned overlapping records",
					"channel", ch.String(), "date", w.Date.Format(time.DateOnly))
				s.metrics.CoverageClamped.Inc()
			}
			table.Append(domain.Row{Date: w.Date, Channel: ch, Coverage: coverage})
		}
		s.metrics.ChannelsScanned.Inc()
	}

	table.Sort()
	return table, nil
}

// concreteChannel synthesizes the channel identifier a wildcard-free pattern
// names, with an empty location code.
func (s *Scanner) concreteChannel(unit Unit) (domain.ChannelID, bool) {
	if s.pattern == "" || strings.ContainsAny(s.pattern, "*?[") {
		return domain.ChannelID{}, false
	}
	return domain.ChannelID{
		Network: unit.Network,
		Station: unit.Station,
		Code:    s.pattern,
	}, true
}
