package main

import (
	"os"

	"github.com/decker502/magicword/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
