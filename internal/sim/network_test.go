package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitkit/logsim/internal/compiler/names"
)

func TestMakeConnectionCodes(t *testing.T) {
	r := newRig()
	codes := r.network.Codes()
	r.make(t, "sw1", "SWITCH", "1")
	r.make(t, "sw2", "SWITCH", "0")
	r.make(t, "g1", "AND", "2")
	r.make(t, "g2", "AND", "2")

	assert.Equal(t, codes.DeviceAbsent,
		r.network.MakeConnection(r.id("ghost"), names.None, r.id("g1"), r.id("I1")))
	assert.Equal(t, codes.DeviceAbsent,
		r.network.MakeConnection(r.id("sw1"), names.None, r.id("ghost"), r.id("I1")))

	assert.Equal(t, codes.PortAbsent,
		r.network.MakeConnection(r.id("sw1"), r.id("Q"), r.id("g1"), r.id("I1")))
	assert.Equal(t, codes.PortAbsent,
		r.network.MakeConnection(r.id("sw1"), names.None, r.id("g1"), r.id("I3")))

	assert.Equal(t, codes.InputToInput,
		r.network.MakeConnection(r.id("g1"), r.id("I1"), r.id("g2"), r.id("I1")))
	assert.Equal(t, codes.OutputToOutput,
		r.network.MakeConnection(r.id("sw1"), names.None, r.id("sw2"), names.None))

	require.Equal(t, r.network.OK(),
		r.network.MakeConnection(r.id("sw1"), names.None, r.id("g1"), r.id("I1")))
	assert.Equal(t, codes.InputConnected,
		r.network.MakeConnection(r.id("sw2"), names.None, r.id("g1"), r.id("I1")))
}

func TestConnectedOutput(t *testing.T) {
	r := newRig()
	r.make(t, "sw1", "SWITCH", "1")
	r.make(t, "g1", "AND", "1")
	r.wire(t, "sw1", "", "g1", "I1")

	dev, port, ok := r.network.ConnectedOutput(r.id("g1"), r.id("I1"))
	require.True(t, ok)
	assert.Equal(t, r.id("sw1"), dev)
	assert.Equal(t, names.None, port)

	_, _, ok = r.network.ConnectedOutput(r.id("sw1"), names.None)
	assert.False(t, ok)
}

func TestCheckNetwork(t *testing.T) {
	r := newRig()
	r.make(t, "sw1", "SWITCH", "1")
	r.make(t, "g1", "OR", "2")
	r.wire(t, "sw1", "", "g1", "I1")

	assert.False(t, r.network.CheckNetwork())
	r.wire(t, "sw1", "", "g1", "I2")
	assert.True(t, r.network.CheckNetwork())
}

func TestGateTruthTables(t *testing.T) {
	cases := []struct {
		kind string
		a, b Signal
		want Signal
	}{
		{"AND", High, High, High},
		{"AND", High, Low, Low},
		{"NAND", High, High, Low},
		{"NAND", Low, High, High},
		{"OR", Low, Low, Low},
		{"OR", Low, High, High},
		{"NOR", Low, Low, High},
		{"NOR", High, Low, Low},
		{"XOR", High, Low, High},
		{"XOR", High, High, Low},
		{"XOR", Low, Low, Low},
	}
	for _, c := range cases {
		r := newRig()
		r.make(t, "sa", "SWITCH", "0")
		r.make(t, "sb", "SWITCH", "0")
		r.devices.SetSwitch(r.id("sa"), c.a)
		r.devices.SetSwitch(r.id("sb"), c.b)
		property := "2"
		if c.kind == "XOR" {
			property = ""
		}
		r.make(t, "g", c.kind, property)
		r.wire(t, "sa", "", "g", "I1")
		r.wire(t, "sb", "", "g", "I2")

		require.True(t, r.network.Execute())
		assert.Equal(t, c.want, r.output(t, "g", ""),
			"%s(%d,%d)", c.kind, c.a, c.b)
	}
}

func TestClockToggles(t *testing.T) {
	r := newRig()
	r.make(t, "clk1", "CLOCK", "2")

	want := []Signal{Low, High, High, Low, Low, High}
	for i, w := range want {
		require.True(t, r.network.Execute())
		assert.Equal(t, w, r.output(t, "clk1", ""), "cycle %d", i+1)
	}
}

func TestSiggenCyclesWaveform(t *testing.T) {
	r := newRig()
	r.make(t, "sg1", "SIGGEN", "0110")

	assert.Equal(t, Low, r.output(t, "sg1", ""))
	want := []Signal{High, High, Low, Low, High, High, Low}
	for i, w := range want {
		require.True(t, r.network.Execute())
		assert.Equal(t, w, r.output(t, "sg1", ""), "cycle %d", i+1)
	}
}

func TestRCFallsAfterTimeConstant(t *testing.T) {
	r := newRig()
	r.make(t, "rc1", "RC", "2")

	want := []Signal{High, High, Low, Low}
	for i, w := range want {
		require.True(t, r.network.Execute())
		assert.Equal(t, w, r.output(t, "rc1", ""), "cycle %d", i+1)
	}
}

// Signals must settle through chained gates within one Execute call.
func TestSignalPropagatesThroughChain(t *testing.T) {
	r := newRig()
	r.make(t, "sw1", "SWITCH", "1")
	prev := "sw1"
	for _, name := range []string{"g1", "g2", "g3", "g4"} {
		r.make(t, name, "AND", "1")
		r.wire(t, prev, "", name, "I1")
		prev = name
	}

	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "g4", ""))

	r.devices.SetSwitch(r.id("sw1"), Low)
	require.True(t, r.network.Execute())
	assert.Equal(t, Low, r.output(t, "g4", ""))
}

// A gate inverting its own output can never settle.
func TestOscillationDetected(t *testing.T) {
	r := newRig()
	r.make(t, "g1", "NAND", "1")
	r.wire(t, "g1", "", "g1", "I1")

	assert.False(t, r.network.Execute())
}

// Cross-coupled NORs (an SR latch) feed back on themselves but still
// settle.
func TestFeedbackLoopSettles(t *testing.T) {
	r := newRig()
	r.make(t, "set", "SWITCH", "1")
	r.make(t, "reset", "SWITCH", "0")
	r.make(t, "q", "NOR", "2")
	r.make(t, "qb", "NOR", "2")
	r.wire(t, "reset", "", "q", "I1")
	r.wire(t, "qb", "", "q", "I2")
	r.wire(t, "set", "", "qb", "I1")
	r.wire(t, "q", "", "qb", "I2")

	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "q", ""))
	assert.Equal(t, Low, r.output(t, "qb", ""))

	// Latching: dropping set keeps q high.
	r.devices.SetSwitch(r.id("set"), Low)
	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "q", ""))
}

func TestDtypeSamplesOnRisingEdge(t *testing.T) {
	r := newRig()
	r.make(t, "clk1", "CLOCK", "1")
	r.make(t, "data", "SWITCH", "1")
	r.make(t, "zero", "SWITCH", "0")
	r.make(t, "ff", "DTYPE", "")
	r.wire(t, "clk1", "", "ff", "CLK")
	r.wire(t, "data", "", "ff", "DATA")
	r.wire(t, "zero", "", "ff", "SET")
	r.wire(t, "zero", "", "ff", "CLEAR")

	// Cycle 1: clock rises, DATA is sampled.
	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "ff", "Q"))
	assert.Equal(t, Low, r.output(t, "ff", "QBAR"))

	// Cycle 2: clock falls, no edge; DATA changes are ignored.
	r.devices.SetSwitch(r.id("data"), Low)
	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "ff", "Q"))

	// Cycle 3: next rising edge samples the new DATA.
	require.True(t, r.network.Execute())
	assert.Equal(t, Low, r.output(t, "ff", "Q"))
	assert.Equal(t, High, r.output(t, "ff", "QBAR"))
}

func TestDtypeSetOverridesClock(t *testing.T) {
	r := newRig()
	r.make(t, "clk1", "CLOCK", "1")
	r.make(t, "zero", "SWITCH", "0")
	r.make(t, "set", "SWITCH", "1")
	r.make(t, "ff", "DTYPE", "")
	r.wire(t, "clk1", "", "ff", "CLK")
	r.wire(t, "zero", "", "ff", "DATA")
	r.wire(t, "set", "", "ff", "SET")
	r.wire(t, "zero", "", "ff", "CLEAR")

	require.True(t, r.network.Execute())
	assert.Equal(t, High, r.output(t, "ff", "Q"))
}
