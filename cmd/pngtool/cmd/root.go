package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const AppName = "pngtool"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - PNG chunk inspection and tone generation tool",
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		DefineInfoCommand(),
		DefineVerifyCommand(),
		DefineIdatCommand(),
		DefineSynthCommand(),
		DefineConvertCommand(),
	)

	return rootCmd.Execute()
}

func loggerFromCmd(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
