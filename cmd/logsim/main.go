package main

import (
	"os"

	"github.com/circuitkit/logsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
