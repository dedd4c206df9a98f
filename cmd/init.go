package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const exampleDefinition = `# Clocked SR latch built from NAND gates.
DEVICES:
    CLOCK clk 2,
    SWITCH set 0,
    SWITCH reset 0,
    NAND g1 2,
    NAND g2 2,
    NAND g3 2,
    NAND g4 2;
CONNECT:
    set > g1.I1,
    clk > g1.I2,
    clk > g2.I1,
    reset > g2.I2,
    g1 > g3.I1,
    g4 > g3.I2,
    g3 > g4.I1,
    g2 > g4.I2;
MONITOR:
    clk, g3, g4;
END;
`

// init: scaffold an example definition file
var InitCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Scaffold an example circuit definition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0] + ".def"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(exampleDefinition), 0o644); err != nil {
			return err
		}
		fmt.Printf("↪ scaffolded example circuit %q ...\n", path)
		return nil
	},
	SilenceUsage: true,
}
