package png

import (
	"errors"
	"fmt"
)

// Raster-level filtering. Up, Average and Paeth reference the previous
// row's unfiltered bytes, so reconstruction must walk rows strictly top to
// bottom; a single previous-row slice is all the state that takes.

// ErrBadRasterSize is returned when a raster buffer does not match the
// geometry the header describes.
var ErrBadRasterSize = errors.New("raster size does not match header geometry")

// FilterRaster applies ft to every scanline of raw image data. raw must
// hold Height rows of RowBytes bytes each; the result holds Height rows of
// RowBytes+1 bytes, each carrying its filter-type byte. The output is what
// an IDAT payload contains before compression.
func FilterRaster(raw []byte, hdr *ImageHeader, ft FilterType) ([]byte, error) {
	rowBytes := hdr.RowBytes()
	height := int(hdr.Height)

	if len(raw) != rowBytes*height {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrBadRasterSize, len(raw), rowBytes*height)
	}

	bpp := BytesPerPixel(hdr.ColorType, hdr.BitDepth)
	out := make([]byte, 0, len(raw)+height)

	var prior []byte
	for y := 0; y < height; y++ {
		row := raw[y*rowBytes : (y+1)*rowBytes]

		filtered, err := Filter(ft, row, prior, bpp)
		if err != nil {
			return nil, fmt.Errorf("failed to filter scanline %d: %w", y, err)
		}

		out = append(out, filtered...)
		prior = row
	}

	return out, nil
}

// UnfilterRaster reconstructs raw image data from a filtered, already
// decompressed IDAT payload. Each row dispatches on its own filter-type
// byte.
func UnfilterRaster(filtered []byte, hdr *ImageHeader) ([]byte, error) {
	rowBytes := hdr.RowBytes()
	height := int(hdr.Height)

	if len(filtered) != (rowBytes+1)*height {
		return nil, fmt.Errorf("%w: have %d bytes, want %d",
			ErrBadRasterSize, len(filtered), (rowBytes+1)*height)
	}

	bpp := BytesPerPixel(hdr.ColorType, hdr.BitDepth)
	out := make([]byte, 0, rowBytes*height)

	var prior []byte
	for y := 0; y < height; y++ {
		row, err := Unfilter(filtered[y*(rowBytes+1):(y+1)*(rowBytes+1)], prior, bpp)
		if err != nil {
			return nil, fmt.Errorf("failed to unfilter scanline %d: %w", y, err)
		}

		out = append(out, row...)
		prior = row
	}

	return out, nil
}
