// Package semantic translates collaborator result codes into precise,
// symbol-located diagnostics.
//
// The collaborators (devices, network, monitors) each mint their own result
// codes from the shared names table, so the handler builds one lookup table
// at construction mapping every minted code to a renderer and a severity.
// Codes absent from the table mean the operation succeeded.
package semantic

import (
	"fmt"
	"strings"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/scanner"
	"github.com/circuitkit/logsim/internal/compiler/symbol"
)

// DeviceCodes are the result codes minted by a Devices collaborator.
type DeviceCodes struct {
	InvalidQualifier names.Code
	NoQualifier      names.Code
	BadDevice        names.Code
	QualifierPresent names.Code
	DevicePresent    names.Code
}

// NetworkCodes are the result codes minted by a Network collaborator.
type NetworkCodes struct {
	InputToInput   names.Code
	OutputToOutput names.Code
	InputConnected names.Code
	PortAbsent     names.Code
	DeviceAbsent   names.Code
}

// MonitorCodes are the result codes minted by a Monitors collaborator.
type MonitorCodes struct {
	NotOutput      names.Code
	MonitorPresent names.Code
}

// DeviceView is the read side of one built device.
type DeviceView interface {
	// HasInput reports whether the device declares the given input port.
	HasInput(port names.ID) bool
	// HasOutput reports whether the device exposes the given output port;
	// names.None asks for the anonymous output of source devices.
	HasOutput(port names.ID) bool
	// Inputs lists the device's input ports in declaration order.
	Inputs() []names.ID
}

// Devices is the device-construction collaborator consumed by the parser
// and the handler.
type Devices interface {
	MakeDevice(name, kind names.ID, property string) names.Code
	GetDevice(name names.ID) (DeviceView, bool)
	FindDevices(kinds ...names.ID) []names.ID
	Codes() DeviceCodes
}

// Network is the connection-construction collaborator.
type Network interface {
	MakeConnection(fromDev, fromPort, toDev, toPort names.ID) names.Code
	// CheckNetwork reports whether every declared input is driven.
	CheckNetwork() bool
	// ConnectedOutput returns the output endpoint driving the given input.
	ConnectedOutput(dev, inputPort names.ID) (names.ID, names.ID, bool)
	Codes() NetworkCodes
}

// Monitors is the monitor-construction collaborator.
type Monitors interface {
	MakeMonitor(dev, port names.ID) names.Code
	Codes() MonitorCodes
}

type entry struct {
	render func(item []symbol.Symbol)
	fatal  bool
}

// Handler owns the code lookup table and renders located semantic
// diagnostics through the scanner.
type Handler struct {
	tbl     *names.Table
	devices Devices
	network Network
	scn     *scanner.Scanner
	table   map[names.Code]entry
}

// NewHandler builds the code table once from the codes the collaborators
// minted. Every code is fatal except MonitorPresent, which is a warning.
func NewHandler(tbl *names.Table, devices Devices, network Network, monitors Monitors, scn *scanner.Scanner) *Handler {
	h := &Handler{tbl: tbl, devices: devices, network: network, scn: scn}
	dc := devices.Codes()
	nc := network.Codes()
	mc := monitors.Codes()
	h.table = map[names.Code]entry{
		// The qualifier/bad-device codes cannot be produced from input the
		// parser already validated, but they stay fatal if they do occur.
		dc.InvalidQualifier: {fatal: true},
		dc.NoQualifier:      {fatal: true},
		dc.BadDevice:        {fatal: true},
		dc.QualifierPresent: {fatal: true},
		dc.DevicePresent:    {render: h.devicePresent, fatal: true},
		nc.InputToInput:     {render: h.inputToInput, fatal: true},
		nc.OutputToOutput:   {render: h.outputToOutput, fatal: true},
		nc.InputConnected:   {render: h.inputConnected, fatal: true},
		nc.PortAbsent:       {render: h.portAbsent, fatal: true},
		nc.DeviceAbsent:     {render: h.deviceAbsent, fatal: true},
		mc.NotOutput:        {render: h.notOutput, fatal: true},
		mc.MonitorPresent:   {render: h.monitorPresent, fatal: false},
	}
	return h
}

// HandleError renders the diagnostic for code, located using the raw item
// symbols, and reports whether the error is fatal to the current build
// phase. Codes not in the table mean success.
func (h *Handler) HandleError(code names.Code, item []symbol.Symbol) bool {
	e, ok := h.table[code]
	if !ok {
		return false
	}
	if e.render != nil {
		e.render(item)
	}
	return e.fatal
}

// roles are the up-to-four symbols of a connection item, recovered purely
// from where the dots sit in the raw symbol sequence.
type roles struct {
	firstDev   *symbol.Symbol
	firstPort  *symbol.Symbol
	secondDev  *symbol.Symbol
	secondPort *symbol.Symbol
}

func labelRoles(item []symbol.Symbol) roles {
	r := roles{firstDev: &item[0]}
	if item[1].Kind == symbol.Dot {
		r.firstPort = &item[2]
		r.secondDev = &item[4]
		if item[5].Kind == symbol.Dot {
			r.secondPort = &item[6]
		}
	} else {
		r.secondDev = &item[2]
		if item[3].Kind == symbol.Dot {
			r.secondPort = &item[4]
		}
	}
	return r
}

// signalStrings renders the two sides of a connection as the user wrote
// them: "device" or "device.port".
func (h *Handler) signalStrings(r roles) (output, input string) {
	output, _ = h.tbl.Resolve(r.firstDev.ID)
	input, _ = h.tbl.Resolve(r.secondDev.ID)
	if r.firstPort != nil {
		port, _ := h.tbl.Resolve(r.firstPort.ID)
		output += "." + port
	}
	if r.secondPort != nil {
		port, _ := h.tbl.Resolve(r.secondPort.ID)
		input += "." + port
	}
	return output, input
}

func (h *Handler) resolve(id names.ID) string {
	s, _ := h.tbl.Resolve(id)
	return s
}

func (h *Handler) devicePresent(item []symbol.Symbol) {
	name := h.resolve(item[1].ID)
	msg := fmt.Sprintf("Device names are not unique. %s is already the name of a device", name)
	h.scn.PrintError(&item[1], 0, msg)
}

func (h *Handler) inputToInput(item []symbol.Symbol) {
	r := labelRoles(item)
	first, second := h.signalStrings(r)
	msg := fmt.Sprintf("Input %s is connected to input %s. Connections must be from outputs to inputs.", first, second)
	h.scn.PrintError(r.firstDev, 0, msg)
}

func (h *Handler) outputToOutput(item []symbol.Symbol) {
	r := labelRoles(item)
	first, second := h.signalStrings(r)
	msg := fmt.Sprintf("Output %s is connected to output %s. Connections must be from outputs to inputs.", first, second)
	// The grammar forces the second side to carry a pin, so point at the
	// pin that should have been an input.
	at := r.secondPort
	if at == nil {
		at = r.secondDev
	}
	h.scn.PrintError(at, 0, msg)
}

func (h *Handler) inputConnected(item []symbol.Symbol) {
	r := labelRoles(item)
	output, input := h.signalStrings(r)
	msg := fmt.Sprintf("Signal %s is already connected to the input pin %s. Only one signal must be connected to an input.", output, input)
	at := r.secondPort
	if at == nil {
		at = r.secondDev
	}
	h.scn.PrintError(at, 0, msg)
}

// portAbsent reports each side whose port does not exist on its device;
// both sides of one connection may be reported independently.
func (h *Handler) portAbsent(item []symbol.Symbol) {
	r := labelRoles(item)

	if first, ok := h.devices.GetDevice(r.firstDev.ID); ok {
		if r.firstPort != nil && !first.HasOutput(r.firstPort.ID) {
			msg := fmt.Sprintf("Port %s is not defined for device %s",
				h.resolve(r.firstPort.ID), h.resolve(r.firstDev.ID))
			h.scn.PrintError(r.firstPort, 0, msg)
		}
		if r.firstPort == nil && !first.HasOutput(names.None) {
			msg := fmt.Sprintf("Port is missing for device %s", h.resolve(r.firstDev.ID))
			h.scn.PrintError(r.firstDev, 0, msg)
		}
	}
	if second, ok := h.devices.GetDevice(r.secondDev.ID); ok {
		if r.secondPort != nil && !second.HasInput(r.secondPort.ID) {
			msg := fmt.Sprintf("Port %s is not defined for device %s",
				h.resolve(r.secondPort.ID), h.resolve(r.secondDev.ID))
			h.scn.PrintError(r.secondPort, 0, msg)
		}
	}
}

// deviceAbsent distinguishes monitor-shaped items (1 or 3 symbols) from
// connection-shaped ones (5 or 7) to locate the undefined reference.
func (h *Handler) deviceAbsent(item []symbol.Symbol) {
	if len(item) == 1 || (len(item) == 3 && item[1].Kind == symbol.Dot) {
		msg := fmt.Sprintf("Device %s is not defined", h.resolve(item[0].ID))
		h.scn.PrintError(&item[0], 0, msg)
		return
	}
	r := labelRoles(item)
	if _, ok := h.devices.GetDevice(r.firstDev.ID); !ok {
		msg := fmt.Sprintf("Device %s is not defined", h.resolve(r.firstDev.ID))
		h.scn.PrintError(r.firstDev, 0, msg)
	}
	if _, ok := h.devices.GetDevice(r.secondDev.ID); !ok {
		msg := fmt.Sprintf("Device %s is not defined", h.resolve(r.secondDev.ID))
		h.scn.PrintError(r.secondDev, 0, msg)
	}
}

func (h *Handler) notOutput(item []symbol.Symbol) {
	msg := "This is not an output. Only outputs can be monitored."
	h.scn.PrintError(&item[len(item)-1], 0, msg)
}

func (h *Handler) monitorPresent(item []symbol.Symbol) {
	msg := "Warning: Monitor exists at this output already."
	h.scn.PrintError(&item[len(item)-1], 0, msg)
}

// DisplayInputNotConnected fires once after the whole connection phase,
// located just past the last connection's last symbol, listing every input
// pin the network reports as undriven.
func (h *Handler) DisplayInputNotConnected(sym symbol.Symbol) {
	var pins []string
	for _, devID := range h.devices.FindDevices() {
		view, ok := h.devices.GetDevice(devID)
		if !ok {
			continue
		}
		for _, port := range view.Inputs() {
			if _, _, ok := h.network.ConnectedOutput(devID, port); !ok {
				pins = append(pins, "'"+h.resolve(devID)+"."+h.resolve(port)+"'")
			}
		}
	}
	msg := fmt.Sprintf("The following input pins are not connected to a device: [%s]",
		strings.Join(pins, ", "))
	h.scn.PrintError(&sym, len(h.resolve(sym.ID)), msg)
}
