package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MagnoElMagnifico/png/wav"
)

func DefineSynthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "synth",
		Short:        "Generate a tone and write it as a PCM wav file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunSynth,
	}

	cmd.Flags().StringP("output", "o", "output.wav", "filename to write to")
	cmd.Flags().String("wave", "sine", "waveform: sine, square, saw, triangle")
	cmd.Flags().Float64("frequency", 440, "frequency in hertz to generate")
	cmd.Flags().Float64("length", 5, "length in seconds of output file")
	cmd.Flags().Int("rate", 48000, "sample rate in hertz")
	cmd.Flags().Int("bit-depth", 16, "output bit depth (8 or 16)")
	cmd.Flags().Float64("amplitude", 1, "waveform amplitude, 1 being full scale")
	cmd.Flags().Float64("pulse-width", 0.5, "square wave duty cycle")

	return cmd
}

func RunSynth(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	output, _ := cmd.Flags().GetString("output")
	waveName, _ := cmd.Flags().GetString("wave")
	frequency, _ := cmd.Flags().GetFloat64("frequency")
	length, _ := cmd.Flags().GetFloat64("length")
	rate, _ := cmd.Flags().GetInt("rate")
	bitDepth, _ := cmd.Flags().GetInt("bit-depth")
	amplitude, _ := cmd.Flags().GetFloat64("amplitude")
	pulseWidth, _ := cmd.Flags().GetFloat64("pulse-width")

	shape, err := wav.ParseWaveform(waveName)
	if err != nil {
		return err
	}

	logger.Info().
		Stringer("wave", shape).
		Float64("frequency", frequency).
		Float64("length", length).
		Msg("generating tone")

	osc := wav.NewOscillator(rate, frequency)
	osc.Amplitude = amplitude
	osc.PulseWidth = pulseWidth

	tone, err := osc.Generate(shape, time.Duration(length*float64(time.Second)))
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", output, err)
	}
	defer file.Close()

	e := wav.NewEncoder(file, rate, bitDepth, 1)
	if err := e.Write(tone); err != nil {
		return err
	}

	if err := e.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)

	return nil
}
