package sds

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/seisops/availability/internal/domain"
)

// miniSEED (SEED 2.4) fixed data header layout, 48 bytes:
//
//	0-5   sequence number (ASCII digits)
//	6     data quality indicator (D, R, Q, or M)
//	8-19  station, location, channel, network codes (ASCII)
//	20-29 record start time (BTIME: year, day-of-year, h, m, s, 0.0001s)
//	30-31 sample count
//	32-35 sample rate factor and multiplier
//	36    activity flags (bit 1: time correction already applied)
//	40-43 time correction in 0.0001 s units
//	46-47 offset of the first blockette
//
// Blockette 1000, when present, carries the record length as a power of two;
// records without it are assumed to be 512 bytes, the archive's write size.
const (
	fixedHeaderLen   = 48
	defaultRecordLen = 512
)

// decodeIntervals reads the fixed header of every record in a file and
// returns one interval per data record, header-only: sample payloads are
// never decoded. Structural problems are reported as ErrInvalidInterval so
// the scanner can isolate the channel; I/O problems as ErrArchiveUnavailable.
func decodeIntervals(path string, ch domain.ChannelID) ([]domain.Interval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrArchiveUnavailable, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrArchiveUnavailable, path, err)
	}
	size := info.Size()

	header := make([]byte, fixedHeaderLen)
	var intervals []domain.Interval
	for offset := int64(0); offset+fixedHeaderLen <= size; {
		if _, err := f.ReadAt(header, offset); err != nil {
			return nil, fmt.Errorf("%w: read %s at %d: %v", domain.ErrArchiveUnavailable, path, offset, err)
		}

		bo, err := headerByteOrder(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %s at offset %d: %v", domain.ErrInvalidInterval, path, offset, err)
		}

		recordLen, err := recordLength(f, header, offset, bo, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %s at offset %d: %v", domain.ErrInvalidInterval, path, offset, err)
		}

		npts := int(bo.Uint16(header[30:32]))
		rate := sampleRate(
			int16(bo.Uint16(header[32:34])), int16(bo.Uint16(header[34:36])))
		if npts > 0 && rate > 0 {
			start := recordStartTime(header, bo)
			end := start.Add(time.Duration(float64(npts) / rate * float64(time.Second)))
			iv, err := domain.NewInterval(ch, start, end, rate)
			if err != nil {
				return nil, fmt.Errorf("%s at offset %d: %w", path, offset, err)
			}
			intervals = append(intervals, iv)
		}

		offset += recordLen
	}
	return intervals, nil
}

// headerByteOrder determines the record's byte order from the BTIME year
// field, the standard heuristic: exactly one byte order yields a plausible
// year. It also rejects records without a valid quality indicator.
func headerByteOrder(header []byte) (binary.ByteOrder, error) {
	switch header[6] {
	case 'D', 'R', 'Q', 'M':
	default:
		return nil, fmt.Errorf("not a miniSEED data record (quality indicator %q)", header[6])
	}

	if plausibleYear(binary.BigEndian.Uint16(header[20:22])) {
		return binary.BigEndian, nil
	}
	if plausibleYear(binary.LittleEndian.Uint16(header[20:22])) {
		return binary.LittleEndian, nil
	}
	return nil, fmt.Errorf("record start year implausible in either byte order")
}

func plausibleYear(year uint16) bool {
	return year >= 1900 && year <= 2100
}

// recordLength walks the blockette chain looking for blockette 1000 and its
// record-length exponent. Records without one fall back to 512 bytes.
func recordLength(f *os.File, header []byte, offset int64, bo binary.ByteOrder, size int64) (int64, error) {
	blk := make([]byte, 8)
	next := int64(bo.Uint16(header[46:48]))
	for next >= fixedHeaderLen && offset+next+int64(len(blk)) <= size {
		if _, err := f.ReadAt(blk, offset+next); err != nil {
			return 0, fmt.Errorf("read blockette: %v", err)
		}
		if bo.Uint16(blk[0:2]) == 1000 {
			exp := int64(blk[6])
			if exp < 7 || exp > 16 {
				return 0, fmt.Errorf("blockette 1000 record length 2^%d out of range", exp)
			}
			return 1 << exp, nil
		}
		following := int64(bo.Uint16(blk[2:4]))
		if following <= next {
			break
		}
		next = following
	}
	return defaultRecordLen, nil
}

// recordStartTime decodes the BTIME start of the record and applies any
// unapplied time correction (0.0001 s units).
func recordStartTime(header []byte, bo binary.ByteOrder) time.Time {
	year := int(bo.Uint16(header[20:22]))
	doy := int(bo.Uint16(header[22:24]))
	hour := int(header[24])
	minute := int(header[25])
	second := int(header[26])
	frac := int(bo.Uint16(header[28:30]))

	start := time.Date(year, time.January, 1, hour, minute, second, frac*100_000, time.UTC).
		AddDate(0, 0, doy-1)

	if header[36]&0x02 == 0 {
		correction := int32(bo.Uint32(header[40:44]))
		start = start.Add(time.Duration(correction) * 100 * time.Microsecond)
	}
	return start
}

// sampleRate resolves the SEED factor/multiplier encoding. Positive values
// are samples per second, negative values seconds per sample (factor) or a
// divisor (multiplier). Returns 0 for non-data records.
func sampleRate(factor, multiplier int16) float64 {
	f, m := float64(factor), float64(multiplier)
	switch {
	case factor > 0 && multiplier > 0:
		return f * m
	case factor > 0 && multiplier < 0:
		return -f / m
	case factor < 0 && multiplier > 0:
		return -m / f
	case factor < 0 && multiplier < 0:
		return 1 / (f * m)
	}
	return 0
}
