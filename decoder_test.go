package png

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
)

// buildTestContainer assembles the minimal well-formed container used
// throughout the decode tests: IHDR for a single RGB pixel, one IDAT chunk
// holding a filtered, uncompressed scanline, and IEND.
func buildTestContainer() *PNG {
	p := New()
	p.Chunks = append(p.Chunks,
		NewImageHeader(1, 1, 8, 2, false),
		NewGenericChunk(TypeIDAT, []byte{0, 0, 0, 0}),
		ImageTrailer{},
	)

	return p
}

func TestContainerRoundTrip(t *testing.T) {
	original := buildTestContainer()

	encoded := original.EncodeBytes()

	decoded, err := DecodeBytes(encoded)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	if len(decoded.Chunks) != 3 {
		t.Fatalf("decoded %d chunks, want 3", len(decoded.Chunks))
	}

	for i, chunk := range decoded.Chunks {
		want := original.Chunks[i]
		if chunk.Type() != want.Type() {
			t.Fatalf("chunk %d type=%v, want %v", i, chunk.Type(), want.Type())
		}

		if !bytes.Equal(chunk.MarshalData(), want.MarshalData()) {
			t.Fatalf("chunk %d data=%v, want %v", i, chunk.MarshalData(), want.MarshalData())
		}
	}

	hdr := decoded.Header()
	if hdr == nil {
		t.Fatal("decoded container has no header")
	}

	if hdr.Width != 1 || hdr.Height != 1 || hdr.BitDepth != 8 || hdr.ColorType != 2 {
		t.Fatalf("unexpected header: %+v", hdr)
	}

	// Re-encoding must be byte-identical.
	if !bytes.Equal(decoded.EncodeBytes(), encoded) {
		t.Fatal("re-encoded bytes differ from the original encoding")
	}
}

func TestDecodeBadSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{137, 80, 78}},
		{"wrong bytes", []byte("GIF89a..")},
		{"jpeg magic", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBytes(tt.data); !errors.Is(err, ErrBadSignature) {
				t.Fatalf("DecodeBytes err=%v, want ErrBadSignature", err)
			}
		})
	}
}

func TestDecodeCorruptedChunk(t *testing.T) {
	encoded := buildTestContainer().EncodeBytes()

	// Flip one bit inside the IDAT data section. The IDAT record starts
	// after the signature (8) and the framed IHDR (4+4+13+4).
	idatData := 8 + 25 + 8
	corrupted := append([]byte(nil), encoded...)
	corrupted[idatData] ^= 0x01

	p, err := DecodeBytes(corrupted)
	if p != nil {
		t.Fatal("corrupted input produced a container")
	}

	var crcErr *CRCError
	if !errors.As(err, &crcErr) {
		t.Fatalf("err=%v, want *CRCError", err)
	}

	if crcErr.ChunkType != TypeIDAT {
		t.Fatalf("CRCError chunk type=%v, want IDAT", crcErr.ChunkType)
	}

	if crcErr.Stored == crcErr.Computed {
		t.Fatal("CRCError stored and computed checksums are equal")
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	encoded := buildTestContainer().EncodeBytes()

	// Cut the stream mid-IDAT, mid-CRC, and mid-length-prefix.
	for _, cut := range []int{len(encoded) - 14, len(encoded) - 2, 8 + 25 + 2} {
		if _, err := DecodeBytes(encoded[:cut]); !errors.Is(err, ErrTruncated) {
			t.Fatalf("truncated at %d: err=%v, want ErrTruncated", cut, err)
		}
	}
}

func TestDecodeMissingTrailer(t *testing.T) {
	p := New()
	p.Chunks = append(p.Chunks, NewImageHeader(1, 1, 8, 0, false))

	if _, err := DecodeBytes(p.EncodeBytes()); !errors.Is(err, ErrMissingTrailer) {
		t.Fatalf("err=%v, want ErrMissingTrailer", err)
	}
}

func TestDecodeTrailingData(t *testing.T) {
	encoded := buildTestContainer().EncodeBytes()
	encoded = append(encoded, 0xDE, 0xAD)

	if _, err := DecodeBytes(encoded); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("err=%v, want ErrTrailingData", err)
	}
}

func TestDecodeUnknownChunkRoundTrip(t *testing.T) {
	ct, err := ChunkTypeFromString("ruSt")
	if err != nil {
		t.Fatalf("ChunkTypeFromString failed: %v", err)
	}

	p := New()
	p.Chunks = append(p.Chunks,
		NewImageHeader(1, 1, 8, 0, false),
		NewGenericChunk(ct, []byte{9, 8, 7, 6, 5}),
		ImageTrailer{},
	)

	encoded := p.EncodeBytes()

	decoded, err := DecodeBytes(encoded)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	generic, ok := decoded.Chunks[1].(*GenericChunk)
	if !ok {
		t.Fatalf("chunk 1 is %T, want *GenericChunk", decoded.Chunks[1])
	}

	if generic.ChunkType != ct {
		t.Fatalf("chunk type=%v, want %v", generic.ChunkType, ct)
	}

	if !bytes.Equal(decoded.EncodeBytes(), encoded) {
		t.Fatal("unknown chunk did not re-encode byte-identically")
	}
}

func TestDecodeMultipleIDATConcatenation(t *testing.T) {
	p := New()
	p.Chunks = append(p.Chunks,
		NewImageHeader(2, 2, 8, 0, false),
		NewGenericChunk(TypeIDAT, []byte{0, 1, 2}),
		NewGenericChunk(TypeIDAT, []byte{0, 3, 4}),
		ImageTrailer{},
	)

	decoded, err := DecodeBytes(p.EncodeBytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	want := []byte{0, 1, 2, 0, 3, 4}
	if got := decoded.ImageData(); !bytes.Equal(got, want) {
		t.Fatalf("ImageData()=%v, want %v", got, want)
	}
}

func TestCustomChunkDecoder(t *testing.T) {
	encoded := buildTestContainer().EncodeBytes()

	r := bytes.NewReader(encoded)

	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		t.Fatalf("failed to skip signature: %v", err)
	}

	p := New()
	p.RegisterChunkDecoder(idatAsTrailerDecoder{})

	chunkCount := 0
	for {
		chunk, err := p.readChunk(r)
		if err != nil {
			t.Fatalf("readChunk failed: %v", err)
		}

		chunkCount++

		if _, ok := chunk.(ImageTrailer); ok {
			break
		}
	}

	// The custom decoder turns IDAT into a trailer, so decoding stops early.
	if chunkCount != 2 {
		t.Fatalf("read %d chunks, want 2", chunkCount)
	}
}

type idatAsTrailerDecoder struct{}

func (idatAsTrailerDecoder) CanDecode(ct ChunkType) bool {
	return ct == TypeIDAT
}

func (idatAsTrailerDecoder) Decode(_ ChunkType, _ []byte) (Chunk, error) {
	return ImageTrailer{}, nil
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.png")

	original := buildTestContainer()
	if err := original.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	decoded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if !bytes.Equal(decoded.EncodeBytes(), original.EncodeBytes()) {
		t.Fatal("file round trip produced different bytes")
	}
}

func TestEncodeWriterError(t *testing.T) {
	p := buildTestContainer()

	if err := p.Encode(failingWriter{}); err == nil {
		t.Fatal("Encode to failing writer succeeded")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}
