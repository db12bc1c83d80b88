package png

import (
	"bytes"
	"errors"
	"testing"
)

func testRaster(hdr *ImageHeader) []byte {
	raw := make([]byte, hdr.RowBytes()*int(hdr.Height))
	for i := range raw {
		raw[i] = byte(i*29 + 3)
	}

	return raw
}

func TestRasterRoundTrip(t *testing.T) {
	headers := []*ImageHeader{
		NewImageHeader(4, 3, 8, 2, false),  // RGB
		NewImageHeader(5, 4, 8, 6, false),  // RGBA
		NewImageHeader(7, 2, 16, 0, false), // 16-bit grayscale
		NewImageHeader(9, 5, 1, 0, false),  // 1-bit grayscale, ragged row
		NewImageHeader(1, 1, 8, 2, false),  // single pixel
	}

	filterTypes := []FilterType{FilterNone, FilterSub, FilterUp, FilterAverage, FilterPaeth}

	for _, hdr := range headers {
		raw := testRaster(hdr)

		for _, ft := range filterTypes {
			filtered, err := FilterRaster(raw, hdr, ft)
			if err != nil {
				t.Fatalf("FilterRaster(%dx%d, %v) failed: %v", hdr.Width, hdr.Height, ft, err)
			}

			wantLen := (hdr.RowBytes() + 1) * int(hdr.Height)
			if len(filtered) != wantLen {
				t.Fatalf("filtered length=%d, want %d", len(filtered), wantLen)
			}

			restored, err := UnfilterRaster(filtered, hdr)
			if err != nil {
				t.Fatalf("UnfilterRaster(%dx%d, %v) failed: %v", hdr.Width, hdr.Height, ft, err)
			}

			if !bytes.Equal(restored, raw) {
				t.Fatalf("raster round trip mismatch for %dx%d, %v", hdr.Width, hdr.Height, ft)
			}
		}
	}
}

func TestUnfilterRasterMixedFilterTypes(t *testing.T) {
	hdr := NewImageHeader(2, 3, 8, 2, false)
	raw := testRaster(hdr)

	rowBytes := hdr.RowBytes()
	bpp := BytesPerPixel(hdr.ColorType, hdr.BitDepth)

	// Filter each row with a different type, as real encoders do.
	var filtered []byte
	var prior []byte

	for y, ft := range []FilterType{FilterSub, FilterPaeth, FilterUp} {
		row := raw[y*rowBytes : (y+1)*rowBytes]

		line, err := Filter(ft, row, prior, bpp)
		if err != nil {
			t.Fatalf("Filter row %d failed: %v", y, err)
		}

		filtered = append(filtered, line...)
		prior = row
	}

	restored, err := UnfilterRaster(filtered, hdr)
	if err != nil {
		t.Fatalf("UnfilterRaster failed: %v", err)
	}

	if !bytes.Equal(restored, raw) {
		t.Fatalf("mixed filter round trip mismatch:\n got %v\nwant %v", restored, raw)
	}
}

func TestFilterRasterSizeMismatch(t *testing.T) {
	hdr := NewImageHeader(4, 4, 8, 2, false)

	if _, err := FilterRaster(make([]byte, 5), hdr, FilterNone); !errors.Is(err, ErrBadRasterSize) {
		t.Fatalf("FilterRaster err=%v, want ErrBadRasterSize", err)
	}

	if _, err := UnfilterRaster(make([]byte, 5), hdr); !errors.Is(err, ErrBadRasterSize) {
		t.Fatalf("UnfilterRaster err=%v, want ErrBadRasterSize", err)
	}
}

func TestFilteredRasterTravelsThroughContainer(t *testing.T) {
	hdr := NewImageHeader(2, 2, 8, 2, false)
	raw := testRaster(hdr)

	filtered, err := FilterRaster(raw, hdr, FilterPaeth)
	if err != nil {
		t.Fatalf("FilterRaster failed: %v", err)
	}

	p := New()
	p.Chunks = append(p.Chunks, hdr, NewGenericChunk(TypeIDAT, filtered), ImageTrailer{})

	decoded, err := DecodeBytes(p.EncodeBytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	restored, err := UnfilterRaster(decoded.ImageData(), decoded.Header())
	if err != nil {
		t.Fatalf("UnfilterRaster failed: %v", err)
	}

	if !bytes.Equal(restored, raw) {
		t.Fatal("raster did not survive the container round trip")
	}
}
