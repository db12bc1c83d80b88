package wav

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-audio/audio"
)

// Waveform identifies the shape an Oscillator generates.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// ErrUnknownWaveform is returned when a waveform name can't be parsed.
var ErrUnknownWaveform = errors.New("unknown waveform")

// ParseWaveform maps a waveform name to its Waveform value. It accepts the
// short form "saw" as well as "sawtooth".
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "sine", "sin":
		return WaveSine, nil
	case "square", "sqr":
		return WaveSquare, nil
	case "sawtooth", "saw":
		return WaveSawtooth, nil
	case "triangle", "tri":
		return WaveTriangle, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
	}
}

// String implements the Stringer interface.
func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// Oscillator generates periodic waveforms as normalized mono float frames,
// ready to be written by an Encoder at any supported bit depth.
type Oscillator struct {
	// SampleRate is the number of frames generated per second of output.
	SampleRate int
	// Frequency of the waveform in hertz.
	Frequency float64
	// Amplitude scales the waveform, 1 being full scale.
	Amplitude float64
	// Offset is added to every sample after scaling.
	Offset float64
	// PulseWidth is the fraction of each square wave period spent high.
	// Ignored by the other shapes.
	PulseWidth float64
}

// NewOscillator returns an oscillator at full amplitude with a 50% duty
// cycle square wave.
func NewOscillator(sampleRate int, freq float64) *Oscillator {
	return &Oscillator{
		SampleRate: sampleRate,
		Frequency:  freq,
		Amplitude:  1,
		PulseWidth: 0.5,
	}
}

// Generate produces dur worth of the given waveform shape.
func (o *Oscillator) Generate(shape Waveform, dur time.Duration) (*audio.Float32Buffer, error) {
	switch shape {
	case WaveSine:
		return o.generate(dur, o.sineSample), nil
	case WaveSquare:
		return o.generate(dur, o.squareSample), nil
	case WaveSawtooth:
		return o.generate(dur, o.sawtoothSample), nil
	case WaveTriangle:
		return o.generate(dur, o.triangleSample), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownWaveform, int(shape))
	}
}

// Sine generates dur worth of sine wave.
func (o *Oscillator) Sine(dur time.Duration) *audio.Float32Buffer {
	return o.generate(dur, o.sineSample)
}

// Square generates dur worth of pulse wave with the configured duty cycle.
func (o *Oscillator) Square(dur time.Duration) *audio.Float32Buffer {
	return o.generate(dur, o.squareSample)
}

// Sawtooth generates dur worth of rising sawtooth wave.
func (o *Oscillator) Sawtooth(dur time.Duration) *audio.Float32Buffer {
	return o.generate(dur, o.sawtoothSample)
}

// Triangle generates dur worth of triangle wave.
func (o *Oscillator) Triangle(dur time.Duration) *audio.Float32Buffer {
	return o.generate(dur, o.triangleSample)
}

func (o *Oscillator) generate(dur time.Duration, sample func(phase float64) float64) *audio.Float32Buffer {
	numSamples := samplesNumFromDuration(dur, o.SampleRate)
	data := make([]float32, numSamples)

	for i := range data {
		t := float64(i) / float64(o.SampleRate)
		phase := t * o.Frequency
		// keep the fractional cycle position
		phase -= math.Floor(phase)

		value := o.Amplitude*sample(phase) + o.Offset
		data[i] = clampFloat32(float32(value), -1, 1)
	}

	return &audio.Float32Buffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  o.SampleRate,
		},
		SourceBitDepth: 16,
	}
}

func (o *Oscillator) sineSample(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func (o *Oscillator) squareSample(phase float64) float64 {
	if phase < o.PulseWidth {
		return 1
	}

	return -1
}

// sawtoothSample rises linearly from -1 to 1 over each period.
func (o *Oscillator) sawtoothSample(phase float64) float64 {
	return 2*phase - 1
}

// triangleSample rises from -1 to 1 over the first half period and falls
// back over the second.
func (o *Oscillator) triangleSample(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}

	return 3 - 4*phase
}
