package png

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Chunk is a self-contained, typed record within a PNG container. Each
// implementation knows its own data length and how to serialize its data
// section; the shared framing logic assembles the full
// length+type+data+CRC record.
type Chunk interface {
	// DataSize returns the byte length of the data section, excluding the
	// type tag and trailing CRC.
	DataSize() uint32
	Type() ChunkType
	MarshalData() []byte
}

// MarshalChunk frames a single chunk as it appears on the wire:
// [size:u32 BE][type:4][data][crc:u32 BE]. The CRC covers the type and data
// bytes only, never the length prefix.
func MarshalChunk(c Chunk) []byte {
	return appendFramedChunk(nil, c, crcTable)
}

func appendFramedChunk(dst []byte, c Chunk, table *CRCTable) []byte {
	dst = binary.BigEndian.AppendUint32(dst, c.DataSize())

	start := len(dst)
	ct := c.Type()
	dst = append(dst, ct[:]...)
	dst = append(dst, c.MarshalData()...)

	return binary.BigEndian.AppendUint32(dst, table.Checksum(dst[start:]))
}

const imageHeaderSize = 13

var (
	// ErrBadHeaderLength is returned when an IHDR data section is not
	// exactly 13 bytes.
	ErrBadHeaderLength = errors.New("IHDR data must be exactly 13 bytes")
	// ErrInvalidHeader is returned by ImageHeader.Validate for field values
	// outside the PNG 1.2 allowed combinations.
	ErrInvalidHeader = errors.New("invalid IHDR")
)

// ImageHeader is the IHDR chunk. It must be the first chunk of a
// well-formed container, a convention this layer leaves to the caller.
//
// Compression and FilterMethod must both be 0, the only values PNG 1.2
// defines. Interlace is 0 (none) or 1 (Adam7).
type ImageHeader struct {
	Width        uint32
	Height       uint32
	BitDepth     uint8
	ColorType    uint8
	Compression  uint8
	FilterMethod uint8
	Interlace    uint8
}

// NewImageHeader builds an IHDR chunk with compression and filter method
// fixed to 0.
func NewImageHeader(width, height uint32, bitDepth, colorType uint8, adam7 bool) *ImageHeader {
	var interlace uint8
	if adam7 {
		interlace = 1
	}

	return &ImageHeader{
		Width:     width,
		Height:    height,
		BitDepth:  bitDepth,
		ColorType: colorType,
		Interlace: interlace,
	}
}

// ParseImageHeader decodes a 13-byte IHDR data section.
func ParseImageHeader(data []byte) (*ImageHeader, error) {
	if len(data) != imageHeaderSize {
		return nil, fmt.Errorf("%w: got %d", ErrBadHeaderLength, len(data))
	}

	return &ImageHeader{
		Width:        binary.BigEndian.Uint32(data[0:4]),
		Height:       binary.BigEndian.Uint32(data[4:8]),
		BitDepth:     data[8],
		ColorType:    data[9],
		Compression:  data[10],
		FilterMethod: data[11],
		Interlace:    data[12],
	}, nil
}

// DataSize returns the fixed IHDR data length.
func (h *ImageHeader) DataSize() uint32 {
	return imageHeaderSize
}

// Type returns TypeIHDR.
func (h *ImageHeader) Type() ChunkType {
	return TypeIHDR
}

// MarshalData emits width and height big-endian, then the five single-byte
// fields in wire order.
func (h *ImageHeader) MarshalData() []byte {
	data := make([]byte, 0, imageHeaderSize)
	data = binary.BigEndian.AppendUint32(data, h.Width)
	data = binary.BigEndian.AppendUint32(data, h.Height)

	return append(data, h.BitDepth, h.ColorType, h.Compression, h.FilterMethod, h.Interlace)
}

// Validate checks the header fields against the combinations PNG 1.2
// allows: bit depth per color type, compression and filter method 0, and
// interlace 0 or 1.
func (h *ImageHeader) Validate() error {
	var allowed []uint8

	switch h.ColorType {
	case 0: // grayscale
		allowed = []uint8{1, 2, 4, 8, 16}
	case 3: // palette index
		allowed = []uint8{1, 2, 4, 8}
	case 2, 4, 6: // truecolor, grayscale+alpha, truecolor+alpha
		allowed = []uint8{8, 16}
	default:
		return fmt.Errorf("%w: color type %d", ErrInvalidHeader, h.ColorType)
	}

	depthOK := false
	for _, d := range allowed {
		if h.BitDepth == d {
			depthOK = true
			break
		}
	}

	if !depthOK {
		return fmt.Errorf("%w: bit depth %d not allowed for color type %d",
			ErrInvalidHeader, h.BitDepth, h.ColorType)
	}

	if h.Compression != 0 {
		return fmt.Errorf("%w: compression method %d", ErrInvalidHeader, h.Compression)
	}

	if h.FilterMethod != 0 {
		return fmt.Errorf("%w: filter method %d", ErrInvalidHeader, h.FilterMethod)
	}

	if h.Interlace > 1 {
		return fmt.Errorf("%w: interlace method %d", ErrInvalidHeader, h.Interlace)
	}

	return nil
}

// RowBytes returns the byte width of one unfiltered scanline:
// ceil(bits-per-pixel x width / 8).
func (h *ImageHeader) RowBytes() int {
	bitsPerPixel := samplesPerPixel(h.ColorType) * int(h.BitDepth)

	return (bitsPerPixel*int(h.Width) + 7) / 8
}

// ImageTrailer is the IEND chunk marking the end of the container. Its
// data section is empty.
type ImageTrailer struct{}

// DataSize returns 0; IEND carries no data.
func (ImageTrailer) DataSize() uint32 {
	return 0
}

// Type returns TypeIEND.
func (ImageTrailer) Type() ChunkType {
	return TypeIEND
}

// MarshalData returns an empty data section.
func (ImageTrailer) MarshalData() []byte {
	return nil
}

// GenericChunk carries an arbitrary type tag and payload verbatim. IDAT
// and every chunk type without a dedicated decoder round-trip through it
// losslessly.
type GenericChunk struct {
	ChunkType ChunkType
	Data      []byte
}

// NewGenericChunk stores a copy of data under the given tag.
func NewGenericChunk(ct ChunkType, data []byte) *GenericChunk {
	return &GenericChunk{
		ChunkType: ct,
		Data:      append([]byte(nil), data...),
	}
}

// DataSize returns the payload length.
func (c *GenericChunk) DataSize() uint32 {
	return uint32(len(c.Data))
}

// Type returns the stored tag.
func (c *GenericChunk) Type() ChunkType {
	return c.ChunkType
}

// MarshalData returns a copy of the stored payload.
func (c *GenericChunk) MarshalData() []byte {
	return append([]byte(nil), c.Data...)
}
