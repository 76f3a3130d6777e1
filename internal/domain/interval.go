package domain

import (
	"fmt"
	"sort"
	"time"
)

// Interval is one contiguous span of recorded samples for a channel,
// [Start, End). SampleRate is informational; coverage math is purely
// interval-based.
type Interval struct {
	Channel    ChannelID
	Start      time.Time
	End        time.Time
	SampleRate float64
}

// NewInterval validates and builds a record interval. Start must be strictly
// before End; violations return ErrInvalidInterval.
func NewInterval(ch ChannelID, start, end time.Time, sampleRate float64) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: %s start %s not before end %s",
			ErrInvalidInterval, ch, start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
	}
	return Interval{Channel: ch, Start: start.UTC(), End: end.UTC(), SampleRate: sampleRate}, nil
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// less orders intervals by start, tie-broken by end.
func (iv Interval) less(other Interval) bool {
	if !iv.Start.Equal(other.Start) {
		return iv.Start.Before(other.Start)
	}
	return iv.End.Before(other.End)
}

// Merge coalesces a channel's intervals into the minimal disjoint cover.
// Touching intervals merge. The input is not modified; the output is sorted
// by start and is identical for any permutation of the input, so two scans
// retrieving the same records in different order produce the same
// availability.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !next.Start.After(current.End) {
			if next.End.After(current.End) {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
