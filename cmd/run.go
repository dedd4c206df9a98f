package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/circuitkit/logsim/internal/compiler"
	"github.com/circuitkit/logsim/internal/sim"
)

var (
	runCycles int
	runConfig string
)

// runOptions is the TOML-configurable shape of one simulation run. Switch
// overrides are applied after cold start, before the first cycle.
type runOptions struct {
	Cycles   int            `toml:"cycles"`
	Switches map[string]int `toml:"switches"`
}

// run: build the network and simulate it
var RunCmd = &cobra.Command{
	Use:   "run [file.def]",
	Short: "Build the logic network and simulate it, printing monitor traces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		opts := runOptions{Cycles: runCycles}
		if runConfig != "" {
			if _, err := toml.DecodeFile(runConfig, &opts); err != nil {
				return fmt.Errorf("reading run config %s: %w", runConfig, err)
			}
			if cmd.Flags().Changed("cycles") {
				opts.Cycles = runCycles
			}
		}
		if opts.Cycles < 1 {
			return fmt.Errorf("cycles must be at least 1, got %d", opts.Cycles)
		}

		slog.Info("building network", "path", path)
		res, err := compiler.CheckFile(path)
		if err != nil {
			return err
		}
		if !res.OK {
			return fmt.Errorf("%s contains errors", path)
		}

		res.ColdStart()
		if err := applySwitches(res, opts.Switches); err != nil {
			return err
		}

		slog.Info("running simulation", "cycles", opts.Cycles)
		if err := res.Run(opts.Cycles); err != nil {
			return err
		}

		res.Monitors.DisplayTraces(os.Stdout)
		return nil
	},
	SilenceUsage: true,
}

func applySwitches(res *compiler.Result, switches map[string]int) error {
	for name, state := range switches {
		if state != 0 && state != 1 {
			return fmt.Errorf("switch %s: state must be 0 or 1, got %d", name, state)
		}
		id, ok := res.Table.Query(name)
		if !ok {
			return fmt.Errorf("switch %s is not defined in the circuit", name)
		}
		signal := sim.Low
		if state == 1 {
			signal = sim.High
		}
		if !res.Devices.SetSwitch(id, signal) {
			return fmt.Errorf("%s is not a switch", name)
		}
		slog.Info("switch override", "name", name, "state", state)
	}
	return nil
}

func init() {
	RunCmd.Flags().IntVarP(&runCycles, "cycles", "n", 20, "number of simulation cycles")
	RunCmd.Flags().StringVarP(&runConfig, "config", "c", "", "TOML run configuration file")
}
