package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MagnoElMagnifico/png"
)

func DefineIdatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idat <file.png>",
		Short: "Extract the concatenated IDAT payload of a PNG file",
		Long: `The 'idat' command decodes a PNG file and writes the concatenation of all
IDAT chunk payloads to a file. The payload is written verbatim, still
DEFLATE-compressed.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunIdat,
	}

	cmd.Flags().StringP("output", "o", "", "output path (default <file.png>.idat)")

	return cmd
}

func RunIdat(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = args[0] + ".idat"
	}

	p, err := png.ReadFile(args[0])
	if err != nil {
		return err
	}

	data := p.ImageData()

	logger.Debug().Int("bytes", len(data)).Str("output", outPath).Msg("writing image data")

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), outPath)

	return nil
}
