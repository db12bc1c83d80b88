package main

import (
	"os"

	"github.com/MagnoElMagnifico/png/cmd/pngtool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
