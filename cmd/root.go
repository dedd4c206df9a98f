package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var quiet bool

var rootCmd = &cobra.Command{
	Use:   "logsim",
	Short: "Logsim CLI — circuit definition checker and logic simulator",
	Long: `Logsim compiles circuit definition (.def) files and simulates the
resulting logic network.

Commands:
  init   Scaffold an example circuit definition file
  check  Parse a definition file and report every error in it
  run    Build the network and simulate it, printing monitor traces
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if quiet {
			level = slog.LevelError
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(InitCmd, CheckCmd, RunCmd)
}
