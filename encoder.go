package png

import (
	"fmt"
	"io"
	"os"
)

// Encode writes the signature followed by each chunk's framed bytes in
// container order. Chunk ordering is the caller's responsibility: IHDR
// first, IEND last.
func (p *PNG) Encode(w io.Writer) error {
	if _, err := w.Write(Signature[:]); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	table := p.crc
	if table == nil {
		table = crcTable
	}

	for _, c := range p.Chunks {
		if _, err := w.Write(appendFramedChunk(nil, c, table)); err != nil {
			return fmt.Errorf("failed to write %q chunk: %w", c.Type(), err)
		}
	}

	return nil
}

// EncodeBytes returns the full encoded container.
func (p *PNG) EncodeBytes() []byte {
	size := len(Signature)
	for _, c := range p.Chunks {
		// 12 framing bytes per chunk: length, type, CRC.
		size += int(c.DataSize()) + 12
	}

	table := p.crc
	if table == nil {
		table = crcTable
	}

	out := make([]byte, 0, size)
	out = append(out, Signature[:]...)

	for _, c := range p.Chunks {
		out = appendFramedChunk(out, c, table)
	}

	return out
}

// WriteFile encodes the container and writes it to path. The bytes are
// assembled in memory first, so an encoding problem never leaves a
// truncated file behind.
func (p *PNG) WriteFile(path string) error {
	if err := os.WriteFile(path, p.EncodeBytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
