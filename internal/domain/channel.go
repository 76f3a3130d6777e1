package domain

import (
	"fmt"
	"strings"
)

// ChannelID identifies one continuous waveform stream. Immutable; used as the
// grouping key throughout the pipeline. Always concrete; wildcard expansion
// happens in the archive adapter.
type ChannelID struct {
	Network  string
	Station  string
	Location string
	Code     string
}

// String renders the canonical dotted form "NW.STA.LL.CCC".
func (c ChannelID) String() string {
	return c.Network + "." + c.Station + "." + c.Location + "." + c.Code
}

// Less orders channel identifiers by their canonical string, the tie-break
// used when sorting availability rows.
func (c ChannelID) Less(other ChannelID) bool {
	return c.String() < other.String()
}

// ParseStationID splits a station identifier "NW.STA" into network and
// station codes.
func ParseStationID(id string) (network, station string, err error) {
	network, station, ok := strings.Cut(id, ".")
	if !ok || network == "" || station == "" {
		return "", "", fmt.Errorf("station id %q: want NETWORK.STATION", id)
	}
	return network, station, nil
}

// sourceNames maps the SEED instrument code (second letter of a channel code)
// to the product subtree name used in archive paths.
var sourceNames = map[byte]string{
	'H': "seismic",
	'L': "seismic",
	'M': "seismic",
	'N': "accelerometer",
	'P': "geophone",
	'A': "tilt",
	'B': "creep",
	'C': "calibration-input",
	'D': "pressure",
	'E': "electric-test",
	'F': "magnetic",
	'I': "humidity",
	'J': "rotational",
	'K': "temperature",
	'O': "water-current",
	'G': "gravimetric",
	'Q': "electric-potential",
	'R': "rainfall",
	'S': "linear-strain",
	'T': "tide",
	'U': "bolometric",
	'V': "volumetric-strain",
	'W': "wind",
}

// SourceName returns the product subtree name for a channel code or pattern,
// keyed on its instrument letter, e.g. "HHZ" -> "seismic". Codes too short or
// with an unmapped instrument letter fall back to "unknown".
func SourceName(channel string) string {
	if len(channel) < 2 {
		return "unknown"
	}
	if name, ok := sourceNames[channel[1]]; ok {
		return name
	}
	return "unknown"
}
