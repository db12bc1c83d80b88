package wav

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		in   string
		want Waveform
	}{
		{"sine", WaveSine},
		{"sin", WaveSine},
		{"square", WaveSquare},
		{"sqr", WaveSquare},
		{"sawtooth", WaveSawtooth},
		{"saw", WaveSawtooth},
		{"triangle", WaveTriangle},
		{"tri", WaveTriangle},
	}

	for _, tt := range tests {
		got, err := ParseWaveform(tt.in)
		if err != nil {
			t.Fatalf("ParseWaveform(%q) failed: %v", tt.in, err)
		}

		if got != tt.want {
			t.Fatalf("ParseWaveform(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseWaveform("noise"); !errors.Is(err, ErrUnknownWaveform) {
		t.Fatalf("ParseWaveform(noise) err=%v, want ErrUnknownWaveform", err)
	}
}

func TestOscillatorSampleCount(t *testing.T) {
	osc := NewOscillator(8000, 440)

	tone := osc.Sine(time.Second)
	if len(tone.Data) != 8000 {
		t.Fatalf("generated %d samples, want 8000", len(tone.Data))
	}

	if tone.Format.NumChannels != 1 || tone.Format.SampleRate != 8000 {
		t.Fatalf("unexpected format: %+v", tone.Format)
	}
}

func TestOscillatorSine(t *testing.T) {
	// One full cycle over 8 samples.
	osc := NewOscillator(8, 1)
	tone := osc.Sine(time.Second)

	s := 1 / math.Sqrt2
	want := []float64{0, s, 1, s, 0, -s, -1, -s}

	for i, v := range want {
		if math.Abs(float64(tone.Data[i])-v) > 1e-6 {
			t.Fatalf("sine sample %d=%v, want %v", i, tone.Data[i], v)
		}
	}
}

func TestOscillatorSquare(t *testing.T) {
	osc := NewOscillator(8, 1)
	tone := osc.Square(time.Second)

	want := []float32{1, 1, 1, 1, -1, -1, -1, -1}
	for i, v := range want {
		if tone.Data[i] != v {
			t.Fatalf("square sample %d=%v, want %v", i, tone.Data[i], v)
		}
	}
}

func TestOscillatorSquarePulseWidth(t *testing.T) {
	osc := NewOscillator(8, 1)
	osc.PulseWidth = 0.25

	tone := osc.Square(time.Second)

	want := []float32{1, 1, -1, -1, -1, -1, -1, -1}
	for i, v := range want {
		if tone.Data[i] != v {
			t.Fatalf("square sample %d=%v, want %v", i, tone.Data[i], v)
		}
	}
}

func TestOscillatorSawtooth(t *testing.T) {
	osc := NewOscillator(8, 1)
	tone := osc.Sawtooth(time.Second)

	for i := 0; i < 8; i++ {
		want := 2*float64(i)/8 - 1
		if math.Abs(float64(tone.Data[i])-want) > 1e-6 {
			t.Fatalf("sawtooth sample %d=%v, want %v", i, tone.Data[i], want)
		}
	}
}

func TestOscillatorTriangle(t *testing.T) {
	osc := NewOscillator(8, 1)
	tone := osc.Triangle(time.Second)

	want := []float64{-1, -0.5, 0, 0.5, 1, 0.5, 0, -0.5}
	for i, v := range want {
		if math.Abs(float64(tone.Data[i])-v) > 1e-6 {
			t.Fatalf("triangle sample %d=%v, want %v", i, tone.Data[i], v)
		}
	}
}

func TestOscillatorAmplitudeAndOffset(t *testing.T) {
	osc := NewOscillator(8, 1)
	osc.Amplitude = 0.5
	osc.Offset = 0.25

	tone := osc.Square(time.Second)

	if tone.Data[0] != 0.75 {
		t.Fatalf("high sample=%v, want 0.75", tone.Data[0])
	}

	if tone.Data[7] != -0.25 {
		t.Fatalf("low sample=%v, want -0.25", tone.Data[7])
	}
}

func TestOscillatorClampsOutput(t *testing.T) {
	osc := NewOscillator(8, 1)
	osc.Amplitude = 3

	tone := osc.Sine(time.Second)

	for i, v := range tone.Data {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d=%v outside [-1, 1]", i, v)
		}
	}
}

func TestOscillatorGenerateDispatch(t *testing.T) {
	osc := NewOscillator(8, 1)

	for _, shape := range []Waveform{WaveSine, WaveSquare, WaveSawtooth, WaveTriangle} {
		tone, err := osc.Generate(shape, time.Second)
		if err != nil {
			t.Fatalf("Generate(%v) failed: %v", shape, err)
		}

		if len(tone.Data) != 8 {
			t.Fatalf("Generate(%v) produced %d samples, want 8", shape, len(tone.Data))
		}
	}

	if _, err := osc.Generate(Waveform(42), time.Second); !errors.Is(err, ErrUnknownWaveform) {
		t.Fatalf("Generate(42) err=%v, want ErrUnknownWaveform", err)
	}
}

func TestWaveformString(t *testing.T) {
	tests := []struct {
		w    Waveform
		want string
	}{
		{WaveSine, "sine"},
		{WaveSquare, "square"},
		{WaveSawtooth, "sawtooth"},
		{WaveTriangle, "triangle"},
		{Waveform(9), "Waveform(9)"},
	}

	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Fatalf("String()=%q, want %q", got, tt.want)
		}
	}
}
