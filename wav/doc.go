// Package wav reads and writes PCM WAV files and synthesizes simple
// waveforms.
//
// The decoder walks the RIFF/WAVE chunk structure, parses the fmt chunk
// (linear PCM only, 8-bit unsigned or 16-bit signed samples, mono or
// stereo), and exposes the data chunk as normalized float frames. The
// encoder writes the mirror image, back-patching the RIFF and data sizes
// on Close. The Oscillator produces sine, square, sawtooth, and triangle
// tones as float frames ready to feed an Encoder.
//
// Compressed audio formats are out of scope.
package wav
