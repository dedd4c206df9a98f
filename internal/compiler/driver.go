// Package compiler assembles the front end and the engine into one
// pipeline: scan, parse, build, and optionally simulate a circuit
// definition file.
package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/parser"
	"github.com/circuitkit/logsim/internal/compiler/scanner"
	"github.com/circuitkit/logsim/internal/sim"
)

// Result holds the collaborators built for one definition file. Every field
// is fresh per file; nothing is shared across CheckFile calls.
type Result struct {
	Table    *names.Table
	Scanner  *scanner.Scanner
	Parser   *parser.Parser
	Devices  *sim.Devices
	Network  *sim.Network
	Monitors *sim.Monitors

	// OK reports that the file parsed and built with no fatal errors.
	OK bool
}

// CheckFile scans, parses and builds the definition file at path.
// Diagnostics go to the scanner's sink (stdout unless an option redirects
// them); the returned error covers only I/O-level failures.
func CheckFile(path string, opts ...scanner.Option) (*Result, error) {
	if filepath.Ext(path) != ".def" {
		return nil, fmt.Errorf("definition file must have .def extension, got %q", filepath.Base(path))
	}

	tbl := names.NewTable()
	scn, err := scanner.New(path, tbl, opts...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	devices := sim.NewDevices(tbl)
	network := sim.NewNetwork(tbl, devices)
	monitors := sim.NewMonitors(tbl, devices, network)
	p := parser.New(tbl, devices, network, monitors, scn)

	return &Result{
		Table:    tbl,
		Scanner:  scn,
		Parser:   p,
		Devices:  devices,
		Network:  network,
		Monitors: monitors,
		OK:       p.ParseNetwork(),
	}, nil
}

// ColdStart resets the built network to its power-on state and discards any
// recorded traces.
func (r *Result) ColdStart() {
	r.Devices.ColdStartup()
	r.Monitors.Reset()
}

// Run executes the network for the given number of cycles, recording every
// monitored output once per cycle. It fails when the network cannot settle.
func (r *Result) Run(cycles int) error {
	if !r.OK {
		return fmt.Errorf("network was not built")
	}
	for i := 0; i < cycles; i++ {
		if !r.Network.Execute() {
			return fmt.Errorf("network oscillating at cycle %d: signals cannot settle", i+1)
		}
		r.Monitors.Record()
	}
	return nil
}
