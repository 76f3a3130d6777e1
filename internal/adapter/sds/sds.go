// Package sds reads record intervals from a miniSEED archive laid out in the
// SeisComP SDS scheme:
//
//	<root>/<year>/<network>/<station>/<channel>.D/NET.STA.LOC.CHA.D.YEAR.DOY
//
// It implements the scanner's RecordSource: channel patterns are expanded
// here against the directory tree, and only concrete channel identifiers and
// validated intervals cross into the core.
package sds

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/seisops/availability/internal/domain"
)

// Archive is a filesystem-backed record source.
type Archive struct {
	root   string
	logger *slog.Logger
}

// New creates an Archive rooted at the given directory.
func New(root string, logger *slog.Logger) *Archive {
	return &Archive{root: root, logger: logger}
}

// ListChannels expands a shell-style channel pattern (e.g. "HH?") against the
// station's channel directories and the location codes present in their file
// names. A missing station directory is an empty result, not an error; an
// unreachable archive root is ErrArchiveUnavailable.
func (a *Archive) ListChannels(ctx context.Context, network, station string, year int, pattern string) ([]domain.ChannelID, error) {
	if _, err := os.Stat(a.root); err != nil {
		return nil, fmt.Errorf("%w: archive root %s: %v", domain.ErrArchiveUnavailable, a.root, err)
	}

	stationDir := filepath.Join(a.root, strconv.Itoa(year), network, station)
	entries, err := os.ReadDir(stationDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveUnavailable, stationDir, err)
	}

	seen := make(map[domain.ChannelID]struct{})
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnavailable, err)
		}
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".D") {
			continue
		}
		code := strings.TrimSuffix(entry.Name(), ".D")
		match, err := path.Match(pattern, code)
		if err != nil {
			return nil, fmt.Errorf("channel pattern %q: %v", pattern, err)
		}
		if !match {
			continue
		}

		locations, err := a.locationCodes(filepath.Join(stationDir, entry.Name()), network, station, code, year)
		if err != nil {
			return nil, err
		}
		for loc := range locations {
			seen[domain.ChannelID{Network: network, Station: station, Location: loc, Code: code}] = struct{}{}
		}
	}

	channels := make([]domain.ChannelID, 0, len(seen))
	for ch := range seen {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].Less(channels[j]) })
	return channels, nil
}

// locationCodes collects the distinct location codes of a channel directory's
// day files. A directory with no parseable files still yields the empty
// location, so the channel is not silently dropped.
func (a *Archive) locationCodes(dir, network, station, code string, year int) (map[string]struct{}, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveUnavailable, dir, err)
	}

	locations := make(map[string]struct{})
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		parts := strings.Split(f.Name(), ".")
		if len(parts) < 7 || parts[0] != network || parts[1] != station || parts[3] != code {
			a.logger.Debug("skipping unrecognized archive file", "dir", dir, "file", f.Name())
			continue
		}
		if parts[5] != strconv.Itoa(year) {
			continue
		}
		locations[parts[2]] = struct{}{}
	}
	if len(locations) == 0 {
		locations[""] = struct{}{}
	}
	return locations, nil
}

// ReadIntervals decodes record headers from every day file of the channel for
// the year. A channel with no files is an empty result. Decoding failures
// surface as ErrInvalidInterval (fatal to this channel only); I/O failures as
// ErrArchiveUnavailable (fatal to the unit).
func (a *Archive) ReadIntervals(ctx context.Context, ch domain.ChannelID, year int) ([]domain.Interval, error) {
	dir := filepath.Join(a.root, strconv.Itoa(year), ch.Network, ch.Station, ch.Code+".D")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveUnavailable, dir, err)
	}

	prefix := fmt.Sprintf("%s.%s.%s.%s.D.%d.", ch.Network, ch.Station, ch.Location, ch.Code, year)
	var intervals []domain.Interval
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnavailable, err)
		}
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		ivs, err := decodeIntervals(filepath.Join(dir, entry.Name()), ch)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, ivs...)
	}
	return intervals, nil
}
