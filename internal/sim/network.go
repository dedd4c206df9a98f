package sim

import (
	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/semantic"
)

// endpoint is one side of a connection: a device and one of its ports,
// names.None for the anonymous output.
type endpoint struct {
	dev  names.ID
	port names.ID
}

// Network owns the wiring between device outputs and inputs and the
// settling loop that propagates signals through it.
type Network struct {
	devices *Devices
	codes   semantic.NetworkCodes
	ok      names.Code

	// drivers maps each connected input endpoint to the output endpoint
	// feeding it. One driver per input, enforced at connection time.
	drivers map[endpoint]endpoint
}

// NewNetwork mints the network result codes from tbl.
func NewNetwork(tbl *names.Table, devices *Devices) *Network {
	c := tbl.Allocate(6)
	return &Network{
		devices: devices,
		codes: semantic.NetworkCodes{
			InputToInput:   c[0],
			OutputToOutput: c[1],
			InputConnected: c[2],
			PortAbsent:     c[3],
			DeviceAbsent:   c[4],
		},
		ok:      c[5],
		drivers: make(map[endpoint]endpoint),
	}
}

// Codes returns the result codes this collaborator minted.
func (n *Network) Codes() semantic.NetworkCodes {
	return n.codes
}

// OK is the success code returned by MakeConnection.
func (n *Network) OK() names.Code {
	return n.ok
}

// MakeConnection wires an output to an input. Either orientation is
// accepted; the sides are classified by which ports their devices declare.
func (n *Network) MakeConnection(fromDev, fromPort, toDev, toPort names.ID) names.Code {
	from, ok := n.devices.Get(fromDev)
	if !ok {
		return n.codes.DeviceAbsent
	}
	to, ok := n.devices.Get(toDev)
	if !ok {
		return n.codes.DeviceAbsent
	}

	fromIsInput := from.HasInput(fromPort)
	fromIsOutput := from.HasOutput(fromPort)
	toIsInput := to.HasInput(toPort)
	toIsOutput := to.HasOutput(toPort)

	switch {
	case !fromIsInput && !fromIsOutput:
		return n.codes.PortAbsent
	case !toIsInput && !toIsOutput:
		return n.codes.PortAbsent
	case fromIsInput && toIsInput:
		return n.codes.InputToInput
	case fromIsOutput && toIsOutput:
		return n.codes.OutputToOutput
	}

	in := endpoint{dev: toDev, port: toPort}
	out := endpoint{dev: fromDev, port: fromPort}
	if toIsOutput {
		in, out = out, in
	}
	if _, connected := n.drivers[in]; connected {
		return n.codes.InputConnected
	}
	n.drivers[in] = out
	return n.ok
}

// ConnectedOutput returns the output endpoint driving the given input.
func (n *Network) ConnectedOutput(dev, inputPort names.ID) (names.ID, names.ID, bool) {
	out, ok := n.drivers[endpoint{dev: dev, port: inputPort}]
	if !ok {
		return names.None, names.None, false
	}
	return out.dev, out.port, true
}

// CheckNetwork reports whether every declared input of every device has a
// driver.
func (n *Network) CheckNetwork() bool {
	for _, id := range n.devices.FindDevices() {
		dev, _ := n.devices.Get(id)
		for _, port := range dev.inputPorts {
			if _, ok := n.drivers[endpoint{dev: id, port: port}]; !ok {
				return false
			}
		}
	}
	return true
}

// inputSignal reads the signal currently arriving at an input endpoint.
func (n *Network) inputSignal(dev, port names.ID) Signal {
	out, ok := n.drivers[endpoint{dev: dev, port: port}]
	if !ok {
		return Low
	}
	driver, _ := n.devices.Get(out.dev)
	s, _ := driver.Output(out.port)
	return s
}

// Execute advances the network one cycle: time-driven devices tick, then
// the combinational devices sweep until every output is stable. It reports
// false when the network fails to settle, which means it oscillates.
func (n *Network) Execute() bool {
	for _, id := range n.devices.FindDevices(n.devices.kDtype) {
		dev, _ := n.devices.Get(id)
		dev.prevClk = n.inputSignal(id, n.devices.pClk)
	}
	n.devices.tick()

	// Each stable sweep can only propagate one more level of logic, so a
	// loop-free network settles within one sweep per device. Anything still
	// changing after that is feeding back on itself.
	limit := len(n.devices.order) + 1
	for i := 0; i < limit; i++ {
		if !n.sweep() {
			return true
		}
	}
	return false
}

// sweep recomputes every gate and flip-flop output once, reporting whether
// anything changed.
func (n *Network) sweep() bool {
	changed := false
	for _, id := range n.devices.order {
		dev := n.devices.devices[id]
		switch dev.Kind {
		case n.devices.kAnd, n.devices.kOr, n.devices.kNand, n.devices.kNor, n.devices.kXor:
			out := n.gateOutput(dev)
			if dev.outputs[names.None] != out {
				dev.outputs[names.None] = out
				changed = true
			}
		case n.devices.kDtype:
			if n.updateDtype(dev) {
				changed = true
			}
		}
	}
	return changed
}

func (n *Network) gateOutput(dev *Device) Signal {
	highs := 0
	for _, port := range dev.inputPorts {
		if n.inputSignal(dev.ID, port) == High {
			highs++
		}
	}
	total := len(dev.inputPorts)
	switch dev.Kind {
	case n.devices.kAnd:
		if highs == total {
			return High
		}
	case n.devices.kNand:
		if highs != total {
			return High
		}
	case n.devices.kOr:
		if highs > 0 {
			return High
		}
	case n.devices.kNor:
		if highs == 0 {
			return High
		}
	case n.devices.kXor:
		if highs == 1 {
			return High
		}
	}
	return Low
}

// updateDtype applies the flip-flop rules: SET and CLEAR override
// asynchronously, otherwise DATA is sampled on the clock's rising edge.
func (n *Network) updateDtype(dev *Device) bool {
	clk := n.inputSignal(dev.ID, n.devices.pClk)
	switch {
	case n.inputSignal(dev.ID, n.devices.pSet) == High:
		dev.memory = High
	case n.inputSignal(dev.ID, n.devices.pClear) == High:
		dev.memory = Low
	case dev.prevClk == Low && clk == High:
		dev.memory = n.inputSignal(dev.ID, n.devices.pData)
	}
	changed := false
	if dev.outputs[n.devices.pQ] != dev.memory {
		dev.outputs[n.devices.pQ] = dev.memory
		changed = true
	}
	if dev.outputs[n.devices.pQbar] != dev.memory.invert() {
		dev.outputs[n.devices.pQbar] = dev.memory.invert()
		changed = true
	}
	return changed
}
