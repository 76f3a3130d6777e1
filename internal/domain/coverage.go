package domain

import "time"

// Coverage computes the fraction of a day window covered by merged intervals,
// measured against the window clipped to [scanStart, scanEnd). An empty
// effective window yields 0.0 by policy rather than being undefined. The
// result is clamped to [0, 1]; clamped reports whether clamping fired, which
// only happens when the "merged" input was not actually disjoint. Callers
// should log that as a data-quality signal.
//
// All lengths are computed in seconds as float64; no rounding happens here.
func Coverage(w DayWindow, merged []Interval, scanStart, scanEnd time.Time) (coverage float64, clamped bool) {
	effStart := maxTime(w.Start, scanStart.UTC())
	effEnd := minTime(w.End, scanEnd.UTC())
	if !effEnd.After(effStart) {
		return 0, false
	}

	total := effEnd.Sub(effStart).Seconds()
	var covered float64
	for _, iv := range merged {
		s := maxTime(iv.Start, effStart)
		e := minTime(iv.End, effEnd)
		if e.After(s) {
			covered += e.Sub(s).Seconds()
		}
	}

	frac := covered / total
	switch {
	case frac < 0:
		return 0, true
	case frac > 1:
		return 1, true
	}
	return frac, false
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
