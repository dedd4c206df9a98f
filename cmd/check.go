package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/circuitkit/logsim/internal/compiler"
)

// check: parse and build without simulating
var CheckCmd = &cobra.Command{
	Use:   "check [file.def]",
	Short: "Parse a circuit definition file and report every error in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		slog.Info("checking definition file", "path", path)

		res, err := compiler.CheckFile(path)
		if err != nil {
			return err
		}
		if !res.OK {
			return fmt.Errorf("%s contains errors", path)
		}

		fmt.Printf("✔︎ %s: %d device(s), %d monitor(s), network fully connected\n",
			path, len(res.Devices.FindDevices()), res.Monitors.Count())
		return nil
	},
	SilenceUsage: true,
}
