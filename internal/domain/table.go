package domain

import (
	"fmt"
	"sort"
	"time"
)

// Row is one availability observation: the coverage fraction for one channel
// on one calendar day. Date is midnight UTC of the day.
type Row struct {
	Date     time.Time `json:"date"`
	Channel  ChannelID `json:"channel"`
	Coverage float64   `json:"coverage"`
}

// Table is the ordered per-day coverage series for one station over one year.
// Rows are sorted by date ascending, then channel, with at most one row per
// (date, channel). The scanner owns a table while it is being built; once
// persisted the in-memory copy is discarded.
type Table struct {
	Network     string    `json:"network"`
	Station     string    `json:"station"`
	Year        int       `json:"year"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
}

// NewTable creates an empty table for a station/year, stamped from the
// package clock.
func NewTable(network, station string, year int) *Table {
	return &Table{
		Network:     network,
		Station:     station,
		Year:        year,
		GeneratedAt: clock.Now().UTC(),
	}
}

// StationID returns the "NW.STA" identifier the table belongs to.
func (t *Table) StationID() string {
	return t.Network + "." + t.Station
}

// Append adds rows without re-sorting; call Sort once building is done.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Sort restores the canonical order: date ascending, then channel.
func (t *Table) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		if !t.Rows[i].Date.Equal(t.Rows[j].Date) {
			return t.Rows[i].Date.Before(t.Rows[j].Date)
		}
		return t.Rows[i].Channel.Less(t.Rows[j].Channel)
	})
}

// Validate checks the table's ordering and (date, channel) uniqueness
// invariants, used at the persistence boundary to refuse malformed input.
func (t *Table) Validate() error {
	for i := 1; i < len(t.Rows); i++ {
		prev, cur := t.Rows[i-1], t.Rows[i]
		if cur.Date.Before(prev.Date) {
			return fmt.Errorf("rows out of order at index %d: %s before %s",
				i, cur.Date.Format(time.DateOnly), prev.Date.Format(time.DateOnly))
		}
		if cur.Date.Equal(prev.Date) {
			if cur.Channel == prev.Channel {
				return fmt.Errorf("duplicate row for %s on %s",
					cur.Channel, cur.Date.Format(time.DateOnly))
			}
			if cur.Channel.Less(prev.Channel) {
				return fmt.Errorf("rows out of order at index %d: %s before %s on %s",
					i, cur.Channel, prev.Channel, cur.Date.Format(time.DateOnly))
			}
		}
	}
	return nil
}
