package cmd

import (
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MagnoElMagnifico/png"
)

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.png>",
		Short: "List the chunks of a PNG file",
		Long: `The 'info' command decodes a PNG file and prints a table of its chunks:
type, payload size, and the critical/public/safe-to-copy properties encoded
in the chunk type casing. When an IHDR chunk is present its fields are
printed as well.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	logger := loggerFromCmd(cmd)

	p, err := png.ReadFile(args[0])
	if err != nil {
		return err
	}

	logger.Debug().Str("file", args[0]).Int("chunks", len(p.Chunks)).Msg("decoded container")

	return writeInfo(cmd.OutOrStdout(), p)
}

func writeInfo(w io.Writer, p *png.PNG) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tSIZE\tCRC\tCRITICAL\tPUBLIC\tSAFE-TO-COPY")

	for _, chunk := range p.Chunks {
		ct := chunk.Type()
		framed := png.MarshalChunk(chunk)
		crc := binary.BigEndian.Uint32(framed[len(framed)-4:])

		fmt.Fprintf(tw, "%s\t%d\t%08x\t%t\t%t\t%t\n",
			ct, chunk.DataSize(), crc,
			ct.IsCritical(), ct.IsPublic(), ct.IsSafeToCopy())
	}

	if hdr := p.Header(); hdr != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "width\t%d\n", hdr.Width)
		fmt.Fprintf(tw, "height\t%d\n", hdr.Height)
		fmt.Fprintf(tw, "bit depth\t%d\n", hdr.BitDepth)
		fmt.Fprintf(tw, "color type\t%d\n", hdr.ColorType)
		fmt.Fprintf(tw, "interlace\t%d\n", hdr.Interlace)
	}

	return tw.Flush()
}
