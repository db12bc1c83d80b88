package wav

import (
	"math"
	"time"
)

// The only WAVE format category this package handles: linear quantization
// PCM, format tag 1.
const wavFormatPCM = 1

const (
	maxPCMInt8Unsigned = 255
	scalePCMInt16      = 32768.0
	maxPCMInt16        = 32767
	floatPCM8Center    = 127.5
	floatPCM8Scale     = 127.5
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// normalizePCMInt maps a raw PCM sample into [-1, 1]. 8-bit samples are
// unsigned and centered on 127.5; 16-bit samples are signed.
func normalizePCMInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32((float64(sample) - floatPCM8Center) / floatPCM8Scale)
	case 16:
		return float32(float64(sample) / scalePCMInt16)
	default:
		return 0
	}
}

func float32ToPCMUint8(value float32) uint8 {
	value = clampFloat32(value, -1, 1)

	scaled := int(math.Round(float64((value + 1.0) * floatPCM8Scale)))
	if scaled < 0 {
		return 0
	}

	if scaled > maxPCMInt8Unsigned {
		return maxPCMInt8Unsigned
	}

	return uint8(scaled)
}

func float32ToPCMInt16(value float32) int16 {
	value = clampFloat32(value, -1, 1)

	sample := min(int64(math.Round(float64(value)*scalePCMInt16)), maxPCMInt16)
	if sample < -scalePCMInt16 {
		sample = -scalePCMInt16
	}

	return int16(sample)
}

func bytesPerSample(bitDepth int) int {
	return (bitDepth-1)/8 + 1
}

func bytesNumFromDuration(dur time.Duration, sampleRate, bitDepth int) int {
	k := bitDepth / 8
	return samplesNumFromDuration(dur, sampleRate) * k
}

func samplesNumFromDuration(dur time.Duration, sampleRate int) int {
	return int(math.Floor(float64(dur / sampleDuration(sampleRate))))
}

func sampleDuration(sampleRate int) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Second / time.Duration(math.Abs(float64(sampleRate)))
}
