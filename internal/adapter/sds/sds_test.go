package sds_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seisops/availability/internal/adapter/sds"
	"github.com/seisops/availability/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSpec struct {
	start       time.Time
	npts        uint16
	rateFactor  int16
	byteOrder   binary.ByteOrder
	noBlockette bool
	quality     byte
}

// buildRecord assembles one 512-byte miniSEED record with a blockette 1000
// (unless noBlockette) and no payload; the decoder only reads headers.
func buildRecord(spec recordSpec) []byte {
	bo := spec.byteOrder
	if bo == nil {
		bo = binary.BigEndian
	}
	quality := spec.quality
	if quality == 0 {
		quality = 'D'
	}

	rec := make([]byte, 512)
	copy(rec[0:6], "000001")
	rec[6] = quality
	copy(rec[8:13], "STA1 ")
	copy(rec[13:15], "  ")
	copy(rec[15:18], "HHZ")
	copy(rec[18:20], "NW")

	start := spec.start.UTC()
	bo.PutUint16(rec[20:22], uint16(start.Year()))
	bo.PutUint16(rec[22:24], uint16(start.YearDay()))
	rec[24] = byte(start.Hour())
	rec[25] = byte(start.Minute())
	rec[26] = byte(start.Second())
	bo.PutUint16(rec[28:30], uint16(start.Nanosecond()/100_000))

	bo.PutUint16(rec[30:32], spec.npts)
	bo.PutUint16(rec[32:34], uint16(spec.rateFactor))
	bo.PutUint16(rec[34:36], 1)

	if !spec.noBlockette {
		rec[39] = 1
		bo.PutUint16(rec[44:46], 64)
		bo.PutUint16(rec[46:48], 48)
		bo.PutUint16(rec[48:50], 1000)
		bo.PutUint16(rec[50:52], 0)
		rec[52] = 11 // Steim2
		if bo == binary.BigEndian {
			rec[53] = 1
		}
		rec[54] = 9 // 2^9 = 512
	}
	return rec
}

func writeDayFile(t *testing.T, root string, year int, network, station, location, code string, doy int, records ...[]byte) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(year), network, station, code+".D")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	name := fmt.Sprintf("%s.%s.%s.%s.D.%d.%03d", network, station, location, code, year, doy)
	var data []byte
	for _, rec := range records {
		data = append(data, rec...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func testArchive(t *testing.T) (*sds.Archive, string) {
	t.Helper()
	root := t.TempDir()
	return sds.New(root, slog.Default()), root
}

func TestReadIntervals_DecodesRecordHeaders(t *testing.T) {
	archive, root := testArchive(t)
	day1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1,
		buildRecord(recordSpec{start: day1, npts: 36000, rateFactor: 100}),
		buildRecord(recordSpec{start: day1.Add(6 * time.Minute), npts: 36000, rateFactor: 100}),
	)

	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	intervals, err := archive.ReadIntervals(context.Background(), ch, 2024)
	require.NoError(t, err)

	require.Len(t, intervals, 2)
	assert.Equal(t, day1, intervals[0].Start)
	assert.Equal(t, day1.Add(6*time.Minute), intervals[0].End)
	assert.Equal(t, day1.Add(12*time.Minute), intervals[1].End)
	assert.InEpsilon(t, 100.0, intervals[0].SampleRate, 1e-9)
}

func TestReadIntervals_LittleEndianRecords(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.March, 5, 12, 30, 15, 0, time.UTC)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 65,
		buildRecord(recordSpec{start: start, npts: 6000, rateFactor: 100, byteOrder: binary.LittleEndian}),
	)

	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	intervals, err := archive.ReadIntervals(context.Background(), ch, 2024)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, start, intervals[0].Start)
	assert.Equal(t, start.Add(time.Minute), intervals[0].End)
}

func TestReadIntervals_DefaultRecordLengthWithoutBlockette(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1,
		buildRecord(recordSpec{start: start, npts: 6000, rateFactor: 100, noBlockette: true}),
		buildRecord(recordSpec{start: start.Add(time.Minute), npts: 6000, rateFactor: 100, noBlockette: true}),
	)

	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	intervals, err := archive.ReadIntervals(context.Background(), ch, 2024)
	require.NoError(t, err)
	assert.Len(t, intervals, 2)
}

func TestReadIntervals_SkipsRecordsWithoutSamples(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1,
		buildRecord(recordSpec{start: start, npts: 0, rateFactor: 100}),
		buildRecord(recordSpec{start: start.Add(time.Minute), npts: 6000, rateFactor: 100}),
	)

	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	intervals, err := archive.ReadIntervals(context.Background(), ch, 2024)
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestReadIntervals_CorruptRecordIsInvalidInterval(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1,
		buildRecord(recordSpec{start: start, npts: 6000, rateFactor: 100, quality: 'X'}),
	)

	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	_, err := archive.ReadIntervals(context.Background(), ch, 2024)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestReadIntervals_NoDataIsEmptyNotError(t *testing.T) {
	archive, _ := testArchive(t)
	ch := domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}
	intervals, err := archive.ReadIntervals(context.Background(), ch, 2024)
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestListChannels_ExpandsPattern(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rec := buildRecord(recordSpec{start: start, npts: 6000, rateFactor: 100})
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1, rec)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHN", 1, rec)
	writeDayFile(t, root, 2024, "NW", "STA1", "", "LOG", 1, rec)

	channels, err := archive.ListChannels(context.Background(), "NW", "STA1", 2024, "HH?")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "HHN", channels[0].Code)
	assert.Equal(t, "HHZ", channels[1].Code)

	exact, err := archive.ListChannels(context.Background(), "NW", "STA1", 2024, "HHZ")
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, domain.ChannelID{Network: "NW", Station: "STA1", Code: "HHZ"}, exact[0])
}

func TestListChannels_DistinctLocationCodes(t *testing.T) {
	archive, root := testArchive(t)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rec := buildRecord(recordSpec{start: start, npts: 6000, rateFactor: 100})
	writeDayFile(t, root, 2024, "NW", "STA1", "", "HHZ", 1, rec)
	writeDayFile(t, root, 2024, "NW", "STA1", "00", "HHZ", 2, rec)

	channels, err := archive.ListChannels(context.Background(), "NW", "STA1", 2024, "HHZ")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "", channels[0].Location)
	assert.Equal(t, "00", channels[1].Location)
}

func TestListChannels_MissingStationIsEmpty(t *testing.T) {
	archive, _ := testArchive(t)
	channels, err := archive.ListChannels(context.Background(), "NW", "GONE", 2024, "HHZ")
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestListChannels_MissingRootIsArchiveUnavailable(t *testing.T) {
	archive := sds.New("/does/not/exist", slog.Default())
	_, err := archive.ListChannels(context.Background(), "NW", "STA1", 2024, "HHZ")
	assert.ErrorIs(t, err, domain.ErrArchiveUnavailable)
}
