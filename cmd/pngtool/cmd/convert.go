package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/spf13/cobra"

	"github.com/MagnoElMagnifico/png/wav"
)

func DefineConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "convert <file.wav>",
		Short:        "Convert a PCM wav file to aiff",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunConvert,
	}

	cmd.Flags().StringP("output", "o", "", "output path (default <file>.aif)")

	return cmd
}

func RunConvert(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	sourcePath := args[0]

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourcePath, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if err := decoder.Err(); err != nil {
			return fmt.Errorf("invalid wav file %s: %w", sourcePath, err)
		}

		return fmt.Errorf("invalid wav file %s", sourcePath)
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	encoder := aiff.NewEncoder(outFile, int(decoder.SampleRate), int(decoder.BitDepth), int(decoder.NumChans))

	format := &audio.Format{
		NumChannels: int(decoder.NumChans),
		SampleRate:  int(decoder.SampleRate),
	}

	logger.Debug().
		Int("channels", format.NumChannels).
		Int("sample_rate", format.SampleRate).
		Int32("bit_depth", decoder.SampleBitDepth()).
		Msg("converting")

	const bufferSize = 1000000

	buf := &audio.Float32Buffer{Data: make([]float32, bufferSize), Format: format}

	var num int
	for err == nil {
		num, err = decoder.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("failed to read PCM data: %w", err)
		}

		if num == 0 {
			break
		}

		data := buf.Data
		if num != len(data) {
			data = data[:num]
		}

		intBuf := float32ToIntBuffer(data, format, int(decoder.BitDepth))

		if err := encoder.Write(intBuf); err != nil {
			return fmt.Errorf("failed to write aiff frames: %w", err)
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wav file converted to %s\n", outPath)

	return nil
}

func float32ToIntBuffer(data []float32, format *audio.Format, bitDepth int) *audio.IntBuffer {
	intBuf := &audio.IntBuffer{
		Format:         format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(data)),
	}
	for i, v := range data {
		intBuf.Data[i] = float32ToPCMInt(v, bitDepth)
	}

	return intBuf
}

func float32ToPCMInt(value float32, bitDepth int) int {
	value = clampFloat32(value, -1, 1)

	switch bitDepth {
	case 8:
		return int(float32ToPCMUint8(value))
	case 16:
		sample := min(int64(math.Round(float64(value)*32768.0)), 32767)
		if sample < -32768 {
			sample = -32768
		}

		return int(sample)
	default:
		return 0
	}
}

func float32ToPCMUint8(value float32) uint8 {
	scaled := int(math.Round(float64((value + 1.0) * 127.5)))
	if scaled < 0 {
		return 0
	}

	if scaled > 255 {
		return 255
	}

	return uint8(scaled)
}

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}
