package png

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Signature is the fixed 8-byte prelude every PNG file starts with.
var Signature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

var (
	// ErrBadSignature is returned when the input does not start with the
	// PNG signature.
	ErrBadSignature = errors.New("missing PNG signature")
	// ErrTruncated is returned when the input ends mid-chunk.
	ErrTruncated = errors.New("truncated PNG input")
	// ErrTrailingData is returned when bytes remain after the IEND chunk.
	ErrTrailingData = errors.New("trailing data after IEND chunk")
	// ErrMissingTrailer is returned when the input ends cleanly on a chunk
	// boundary but no IEND chunk was seen.
	ErrMissingTrailer = errors.New("missing IEND chunk")
	// ErrChunkTooLarge is returned for a length field above 2^31-1, the
	// format's upper bound.
	ErrChunkTooLarge = errors.New("chunk length exceeds 2^31-1")
)

// CRCError reports a checksum mismatch on a chunk record. Decoding halts on
// the first mismatch; corrupted data is never silently accepted.
type CRCError struct {
	ChunkType ChunkType
	Stored    uint32
	Computed  uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("CRC mismatch on %q chunk: stored 0x%08X, computed 0x%08X",
		e.ChunkType, e.Stored, e.Computed)
}

// PNG is an ordered sequence of chunks bracketed by the fixed signature.
// Order is semantically significant (IHDR first, IEND last, IDAT chunks in
// between), but this layer preserves order without policing it on encode.
type PNG struct {
	Chunks []Chunk

	crc      *CRCTable
	registry *ChunkRegistry
}

// New returns an empty container ready to be populated chunk by chunk.
func New() *PNG {
	return &PNG{
		crc:      crcTable,
		registry: newDefaultChunkRegistry(),
	}
}

// RegisterChunkDecoder adds a typed decoder consulted during Decode before
// the generic fallback.
func (p *PNG) RegisterChunkDecoder(dec ChunkDecoder) {
	if p.registry == nil {
		p.registry = newDefaultChunkRegistry()
	}

	p.registry.Register(dec)
}

// Decode reads a full PNG container from r. It verifies the signature,
// checks every chunk CRC, and stops at the IEND chunk. Input that ends
// mid-chunk, or that continues past IEND, is an error; no partial
// container is ever returned.
func Decode(r io.Reader) (*PNG, error) {
	var sig [8]byte

	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	if sig != Signature {
		return nil, ErrBadSignature
	}

	p := New()

	for {
		chunk, err := p.readChunk(r)
		if err != nil {
			return nil, err
		}

		p.Chunks = append(p.Chunks, chunk)

		if _, done := chunk.(ImageTrailer); done {
			break
		}
	}

	var extra [1]byte

	_, err := io.ReadFull(r, extra[:])
	if err == nil {
		return nil, ErrTrailingData
	}

	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to probe for trailing data: %w", err)
	}

	return p, nil
}

// DecodeBytes decodes a container held fully in memory.
func DecodeBytes(data []byte) (*PNG, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile reads and decodes the PNG file at path.
func ReadFile(path string) (*PNG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(bufio.NewReader(f))
}

// readChunk reads one length+type+data+crc record, verifies its CRC, and
// dispatches it to the typed decoders.
func (p *PNG) readChunk(r io.Reader) (Chunk, error) {
	var header [8]byte // length + type

	_, err := io.ReadFull(r, header[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Clean end of input on a chunk boundary, but IEND never came.
			return nil, ErrMissingTrailer
		}

		return nil, fmt.Errorf("%w: reading chunk header: %w", ErrTruncated, err)
	}

	length := binary.BigEndian.Uint32(header[:4])
	if length > 0x7FFFFFFF {
		return nil, fmt.Errorf("%w: %d", ErrChunkTooLarge, length)
	}

	// The CRC covers the type and data bytes, so keep them contiguous.
	record := make([]byte, 4+int(length))
	copy(record, header[4:])

	if _, err := io.ReadFull(r, record[4:]); err != nil {
		return nil, fmt.Errorf("%w: reading chunk data: %w", ErrTruncated, err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading chunk CRC: %w", ErrTruncated, err)
	}

	chunkType, err := ChunkTypeFromBytes(record[:4])
	if err != nil {
		return nil, err
	}

	stored := binary.BigEndian.Uint32(crcBuf[:])
	if computed := p.crc.Checksum(record); computed != stored {
		return nil, &CRCError{ChunkType: chunkType, Stored: stored, Computed: computed}
	}

	return p.registry.Decode(chunkType, record[4:])
}

// Header returns the container's ImageHeader, if one was decoded.
func (p *PNG) Header() *ImageHeader {
	for _, c := range p.Chunks {
		if h, ok := c.(*ImageHeader); ok {
			return h
		}
	}

	return nil
}

// ImageData returns the concatenation of all IDAT payloads in container
// order. Multiple IDAT chunks form a single logical stream and must be
// joined before decompression.
func (p *PNG) ImageData() []byte {
	var out []byte

	for _, c := range p.Chunks {
		if c.Type() == TypeIDAT {
			out = append(out, c.MarshalData()...)
		}
	}

	return out
}
