// Package domain models per-day waveform data availability for channels in a
// miniSEED archive.
//
// # Archive Conventions
//
// Waveform data lives in a year/station archive laid out in the SeisComP SDS
// scheme:
//
//	<archive>/<year>/<network>/<station>/<channel>.D/NET.STA.LOC.CHA.D.YEAR.DOY
//
// One file per channel per calendar day. The archive adapter reads record
// headers from these files and hands this package concrete record intervals;
// nothing here touches the miniSEED format.
//
// # Channel Identifiers
//
// A channel is identified by network, station, location, and channel code,
// written canonically as "NW.STA.LL.CCC" (location may be empty: "NW.STA..HHZ").
// Channel codes follow the SEED convention: band, instrument, and orientation
// letters, e.g. "HHZ" = high-rate broadband, vertical. The instrument letter
// selects the product subtree via [SourceName] ("H" -> seismic,
// "N" -> accelerometer, and so on).
//
// Wildcard channel patterns (e.g. "HH?") are expanded by the archive adapter
// before they reach this package; every ChannelID here is concrete.
//
// # Availability Semantics
//
// A record interval is one contiguous run of samples: [start, end) with a
// nominal sample rate. Intervals for a channel are merged into a minimal
// disjoint cover ([Merge]), the scan range is partitioned into uniform UTC
// day windows ([Windows]), and each window's coverage is the fraction of the
// window (clipped to the scan range) overlapped by merged intervals
// ([Coverage]). Days are a fixed 86400 seconds; leap seconds are not modelled.
//
// Coverage is purely presence/absence of samples. A record spanning midnight
// contributes to both days through its intersection with each day's window.
//
// # Tables
//
// An availability table holds one station's rows for one year, sorted by date
// then channel, with at most one row per (date, channel). Tables are built by
// the scanner, persisted once complete, and read back only for visualisation.
package domain
