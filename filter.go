package png

import (
	"errors"
	"fmt"
)

// Scanline filters of PNG filter method 0, the only method the format
// defines. Filtering transforms raw pixel bytes into small differences
// that compress well; every transform is exactly reversible.
//
// All arithmetic is unsigned modulo 256. Positions left of column zero,
// and the whole prior scanline when none exists, read as zero.

// FilterType identifies one of the five per-scanline transforms. Each
// filtered scanline carries its type as a leading byte, so rows filtered
// with different types mix freely within one image.
type FilterType byte

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "None"
	case FilterSub:
		return "Sub"
	case FilterUp:
		return "Up"
	case FilterAverage:
		return "Average"
	case FilterPaeth:
		return "Paeth"
	default:
		return fmt.Sprintf("FilterType(%d)", byte(f))
	}
}

var (
	// ErrUnknownFilterType is returned for a filter-type byte outside 0-4.
	ErrUnknownFilterType = errors.New("unknown filter type")
	// ErrMissingFilterByte is returned when a filtered scanline is empty
	// and therefore lacks its leading filter-type byte.
	ErrMissingFilterByte = errors.New("filtered scanline is missing its filter-type byte")
	// ErrInvalidBPP is returned when the bytes-per-pixel lookback distance
	// is below 1.
	ErrInvalidBPP = errors.New("bytes per pixel must be at least 1")
)

// samplesPerPixel derives the sample count from the color-type bit flags:
// one grayscale or palette sample, plus two more when the color bit is
// set, plus one when the alpha bit is set.
func samplesPerPixel(colorType uint8) int {
	samples := 1
	samples += int(colorType & (1 << 1))
	samples += int(colorType&(1<<2)) >> 2

	return samples
}

// BytesPerPixel returns the filter lookback distance for the given color
// type and bit depth: the byte count of one complete pixel, rounded up to
// 1. Sub-byte depths (1, 2, 4) still advance the filters one whole byte at
// a time, hence the rounding.
func BytesPerPixel(colorType, bitDepth uint8) int {
	bytesPerSample := 1
	if bitDepth == 16 {
		bytesPerSample = 2
	}

	return samplesPerPixel(colorType) * bytesPerSample
}

// Filter applies ft to one scanline and prepends the filter-type byte.
// prior is the previous scanline's unfiltered bytes, or nil on the first
// row. bpp is the lookback distance (see BytesPerPixel).
func Filter(ft FilterType, line, prior []byte, bpp int) ([]byte, error) {
	if bpp < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBPP, bpp)
	}

	out := make([]byte, len(line)+1)
	out[0] = byte(ft)

	switch ft {
	case FilterNone:
		copy(out[1:], line)
	case FilterSub:
		for i, b := range line {
			out[i+1] = b - at(line, i-bpp)
		}
	case FilterUp:
		for i, b := range line {
			out[i+1] = b - at(prior, i)
		}
	case FilterAverage:
		for i, b := range line {
			out[i+1] = b - average(at(line, i-bpp), at(prior, i))
		}
	case FilterPaeth:
		for i, b := range line {
			out[i+1] = b - paethPredictor(at(line, i-bpp), at(prior, i), at(prior, i-bpp))
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFilterType, byte(ft))
	}

	return out, nil
}

// Unfilter reverses Filter: it reads the leading filter-type byte, strips
// it, and reconstructs the original scanline. prior must be the previous
// scanline's already-reconstructed bytes, or nil on the first row.
func Unfilter(filtered, prior []byte, bpp int) ([]byte, error) {
	if bpp < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBPP, bpp)
	}

	if len(filtered) == 0 {
		return nil, ErrMissingFilterByte
	}

	line := filtered[1:]
	out := make([]byte, len(line))

	// Sub, Average and Paeth read back into out itself: the left neighbor
	// must already be reconstructed when a byte is processed.
	switch FilterType(filtered[0]) {
	case FilterNone:
		copy(out, line)
	case FilterSub:
		for i, b := range line {
			out[i] = b + at(out, i-bpp)
		}
	case FilterUp:
		for i, b := range line {
			out[i] = b + at(prior, i)
		}
	case FilterAverage:
		for i, b := range line {
			out[i] = b + average(at(out, i-bpp), at(prior, i))
		}
	case FilterPaeth:
		for i, b := range line {
			out[i] = b + paethPredictor(at(out, i-bpp), at(prior, i), at(prior, i-bpp))
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFilterType, filtered[0])
	}

	return out, nil
}

// at returns s[i], or 0 when the position is absent: left of column zero,
// or anywhere on a missing prior scanline.
func at(s []byte, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}

	return s[i]
}

// average computes floor((left+up)/2) without byte overflow.
func average(left, up byte) byte {
	return byte((int(left) + int(up)) / 2)
}

// paethPredictor picks the neighbor closest to left+up-upLeft, computed in
// int arithmetic so the comparison never wraps. Ties break toward left,
// then up; the order is fixed by the format and load-bearing for
// round-trip byte equality.
func paethPredictor(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)

	distLeft := abs(p - int(left))
	distUp := abs(p - int(up))
	distUpLeft := abs(p - int(upLeft))

	switch {
	case distLeft <= distUp && distLeft <= distUpLeft:
		return left
	case distUp <= distUpLeft:
		return up
	default:
		return upLeft
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
