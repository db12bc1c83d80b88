package png

import "fmt"

// ChunkDecoder builds a typed chunk from a record's tag and data bytes.
type ChunkDecoder interface {
	CanDecode(ct ChunkType) bool
	Decode(ct ChunkType, data []byte) (Chunk, error)
}

// ChunkRegistry resolves chunk records to typed decoders. Records with no
// matching decoder fall back to GenericChunk, so unknown-but-well-formed
// chunk types always decode and re-encode byte-identically.
type ChunkRegistry struct {
	decoders []ChunkDecoder
}

func newDefaultChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		decoders: []ChunkDecoder{
			imageHeaderDecoder{},
			imageTrailerDecoder{},
		},
	}
}

// Register appends a decoder to the registry. Earlier registrations win
// when several decoders claim the same type.
func (r *ChunkRegistry) Register(dec ChunkDecoder) {
	if r == nil || dec == nil {
		return
	}

	r.decoders = append(r.decoders, dec)
}

// Decode dispatches a record to the first matching decoder, or to the
// generic fallback when none claims it.
func (r *ChunkRegistry) Decode(ct ChunkType, data []byte) (Chunk, error) {
	for _, dec := range r.decoders {
		if dec.CanDecode(ct) {
			chunk, err := dec.Decode(ct, data)
			if err != nil {
				return nil, fmt.Errorf("chunk decoder failed for %q: %w", ct, err)
			}

			return chunk, nil
		}
	}

	return NewGenericChunk(ct, data), nil
}

// DecodeChunk builds the typed chunk for a type+data record: the first four
// bytes are the chunk type, the remainder is the data section. It uses the
// default registry (IHDR, IEND, generic fallback).
func DecodeChunk(record []byte) (Chunk, error) {
	if len(record) < 4 {
		return nil, fmt.Errorf("%w: record holds %d", ErrBadChunkTypeLength, len(record))
	}

	ct, err := ChunkTypeFromBytes(record[:4])
	if err != nil {
		return nil, err
	}

	return newDefaultChunkRegistry().Decode(ct, record[4:])
}

type imageHeaderDecoder struct{}

func (imageHeaderDecoder) CanDecode(ct ChunkType) bool {
	return ct == TypeIHDR
}

func (imageHeaderDecoder) Decode(_ ChunkType, data []byte) (Chunk, error) {
	return ParseImageHeader(data)
}

type imageTrailerDecoder struct{}

func (imageTrailerDecoder) CanDecode(ct ChunkType) bool {
	return ct == TypeIEND
}

// Decode ignores any data bytes; the format mandates a zero-length IEND.
func (imageTrailerDecoder) Decode(_ ChunkType, _ []byte) (Chunk, error) {
	return ImageTrailer{}, nil
}
