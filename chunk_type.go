package png

import (
	"errors"
	"fmt"
)

// Chunk types handled with dedicated structure. Everything else decodes
// through the generic fallback.
var (
	// TypeIHDR is the image header chunk type.
	TypeIHDR = ChunkType{'I', 'H', 'D', 'R'}
	// TypeIDAT is the image data chunk type.
	TypeIDAT = ChunkType{'I', 'D', 'A', 'T'}
	// TypeIEND is the image trailer chunk type.
	TypeIEND = ChunkType{'I', 'E', 'N', 'D'}
)

// ErrBadChunkTypeLength is returned when constructing a ChunkType from
// anything other than exactly 4 bytes.
var ErrBadChunkTypeLength = errors.New("chunk type must be exactly 4 bytes")

// ChunkType is the 4-byte tag identifying a chunk's purpose. The format
// restricts each byte to ASCII letters (65-90, 97-122), but the tag is
// stored verbatim and compared byte-wise; case carries the property flags
// exposed by the Is* predicates.
type ChunkType [4]byte

// ChunkTypeFromString builds a ChunkType from a 4-character code such as
// "IHDR".
func ChunkTypeFromString(code string) (ChunkType, error) {
	var ct ChunkType

	if len(code) != len(ct) {
		return ct, fmt.Errorf("%w: got %d", ErrBadChunkTypeLength, len(code))
	}

	copy(ct[:], code)

	return ct, nil
}

// ChunkTypeFromBytes builds a ChunkType from a 4-byte slice.
func ChunkTypeFromBytes(data []byte) (ChunkType, error) {
	var ct ChunkType

	if len(data) != len(ct) {
		return ct, fmt.Errorf("%w: got %d", ErrBadChunkTypeLength, len(data))
	}

	copy(ct[:], data)

	return ct, nil
}

// String renders the tag as text. Tags are ASCII letters in any well-formed
// file, but arbitrary bytes are rendered as-is.
func (c ChunkType) String() string {
	return string(c[:])
}

// IsCritical reports whether the chunk is necessary for a meaningful
// display of the image: bit 5 of the first byte is clear (uppercase).
func (c ChunkType) IsCritical() bool {
	return c[0]&(1<<5) == 0
}

// IsPublic reports whether the type code is a registered special-purpose
// code rather than a private one: bit 5 of the third byte is clear.
func (c ChunkType) IsPublic() bool {
	return c[2]&(1<<5) == 0
}

// IsSafeToCopy reports whether an editor that does not recognize the chunk
// may carry it over to a modified file: bit 5 of the fourth byte is set.
func (c ChunkType) IsSafeToCopy() bool {
	return c[3]&(1<<5) != 0
}
