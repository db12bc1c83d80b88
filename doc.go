// Package png implements the PNG container format at the chunk level:
// the 8-byte signature, length-prefixed and CRC-32 checksummed chunk
// records, typed IHDR/IEND chunks with a generic fallback for every other
// chunk type, and the five scanline filters of filter method 0.
//
// The package deliberately stops below the pixel level. IDAT payloads are
// carried verbatim; DEFLATE compression and decompression belong to the
// caller, as does palette handling and Adam7 interlacing. Decoding verifies
// every chunk CRC and fails on the first mismatch, so a successfully
// decoded container is known to be intact.
//
// The sibling package wav provides RIFF/WAVE encoding, decoding, and simple
// waveform synthesis.
package png
