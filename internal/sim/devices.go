// Package sim is the logic network engine: device construction, wiring,
// monitoring and cycle-by-cycle execution.
//
// Each collaborator mints its result codes from the shared names table at
// construction, so the parser's semantic error handler can classify codes
// without sim and the compiler front end knowing about each other's
// internals.
package sim

import (
	"strconv"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/semantic"
	"github.com/circuitkit/logsim/internal/compiler/symbol"
)

// Signal is a logic level on an output.
type Signal int

const (
	Low  Signal = 0
	High Signal = 1
)

func (s Signal) invert() Signal {
	if s == High {
		return Low
	}
	return High
}

// Device is one built element of the network.
//
// The anonymous output of source devices (SWITCH, CLOCK, RC, SIGGEN) is
// keyed by names.None; gate outputs likewise. DTYPE is the only device with
// named outputs.
type Device struct {
	ID   names.ID
	Kind names.ID

	inputPorts []names.ID
	inputSet   map[names.ID]bool
	outputs    map[names.ID]Signal

	// kind-specific state
	switchState  Signal
	halfPeriod   int
	timeConstant int
	waveform     []Signal
	counter      int
	memory       Signal
	prevClk      Signal
}

// HasInput reports whether the device declares the given input port.
func (d *Device) HasInput(port names.ID) bool {
	return d.inputSet[port]
}

// HasOutput reports whether the device exposes the given output port;
// names.None asks for the anonymous output.
func (d *Device) HasOutput(port names.ID) bool {
	_, ok := d.outputs[port]
	return ok
}

// Inputs lists the device's input ports in declaration order.
func (d *Device) Inputs() []names.ID {
	return d.inputPorts
}

// Output returns the current signal on the given output port.
func (d *Device) Output(port names.ID) (Signal, bool) {
	s, ok := d.outputs[port]
	return s, ok
}

// Devices owns every built device and the rules for constructing them.
type Devices struct {
	tbl   *names.Table
	codes semantic.DeviceCodes
	ok    names.Code

	devices map[names.ID]*Device
	order   []names.ID

	kClock, kSwitch, kRC, kSiggen names.ID
	kAnd, kNand, kOr, kNor        names.ID
	kXor, kDtype                  names.ID
	pData, pSet, pClear, pClk     names.ID
	pQ, pQbar                     names.ID
	gateInputs                    []names.ID
}

// NewDevices mints the device result codes from tbl and interns the device
// keyword and pin names so construction never allocates new table entries
// per call.
func NewDevices(tbl *names.Table) *Devices {
	c := tbl.Allocate(6)
	d := &Devices{
		tbl: tbl,
		codes: semantic.DeviceCodes{
			InvalidQualifier: c[0],
			NoQualifier:      c[1],
			BadDevice:        c[2],
			QualifierPresent: c[3],
			DevicePresent:    c[4],
		},
		ok:      c[5],
		devices: make(map[names.ID]*Device),

		kClock:  tbl.Intern("CLOCK"),
		kSwitch: tbl.Intern("SWITCH"),
		kRC:     tbl.Intern("RC"),
		kSiggen: tbl.Intern("SIGGEN"),
		kAnd:    tbl.Intern("AND"),
		kNand:   tbl.Intern("NAND"),
		kOr:     tbl.Intern("OR"),
		kNor:    tbl.Intern("NOR"),
		kXor:    tbl.Intern("XOR"),
		kDtype:  tbl.Intern("DTYPE"),
		pData:   tbl.Intern("DATA"),
		pSet:    tbl.Intern("SET"),
		pClear:  tbl.Intern("CLEAR"),
		pClk:    tbl.Intern("CLK"),
		pQ:      tbl.Intern("Q"),
		pQbar:   tbl.Intern("QBAR"),
	}
	for i := 1; i <= symbol.MaxGateInputs; i++ {
		d.gateInputs = append(d.gateInputs, tbl.Intern("I"+strconv.Itoa(i)))
	}
	return d
}

// Codes returns the result codes this collaborator minted.
func (ds *Devices) Codes() semantic.DeviceCodes {
	return ds.codes
}

// OK is the success code returned by MakeDevice.
func (ds *Devices) OK() names.Code {
	return ds.ok
}

// MakeDevice validates the declaration and builds the device. The property
// string is the raw qualifier token; devices with a fixed shape (XOR,
// DTYPE) must not carry one.
func (ds *Devices) MakeDevice(name, kind names.ID, property string) names.Code {
	if _, exists := ds.devices[name]; exists {
		return ds.codes.DevicePresent
	}

	dev := &Device{
		ID:       name,
		Kind:     kind,
		inputSet: make(map[names.ID]bool),
		outputs:  make(map[names.ID]Signal),
	}

	switch kind {
	case ds.kSwitch:
		state, code := ds.bitQualifier(property)
		if code != ds.ok {
			return code
		}
		dev.switchState = state
		dev.outputs[names.None] = state

	case ds.kClock:
		n, code := ds.positiveQualifier(property)
		if code != ds.ok {
			return code
		}
		dev.halfPeriod = n
		dev.outputs[names.None] = Low

	case ds.kRC:
		n, code := ds.positiveQualifier(property)
		if code != ds.ok {
			return code
		}
		dev.timeConstant = n
		dev.outputs[names.None] = High

	case ds.kSiggen:
		wave, code := ds.waveformQualifier(property)
		if code != ds.ok {
			return code
		}
		dev.waveform = wave
		dev.outputs[names.None] = wave[0]

	case ds.kAnd, ds.kNand, ds.kOr, ds.kNor:
		n, code := ds.fanInQualifier(property)
		if code != ds.ok {
			return code
		}
		ds.addGateInputs(dev, n)
		dev.outputs[names.None] = Low

	case ds.kXor:
		if property != "" {
			return ds.codes.QualifierPresent
		}
		ds.addGateInputs(dev, 2)
		dev.outputs[names.None] = Low

	case ds.kDtype:
		if property != "" {
			return ds.codes.QualifierPresent
		}
		for _, p := range []names.ID{ds.pClk, ds.pSet, ds.pClear, ds.pData} {
			dev.inputPorts = append(dev.inputPorts, p)
			dev.inputSet[p] = true
		}
		dev.outputs[ds.pQ] = Low
		dev.outputs[ds.pQbar] = High

	default:
		return ds.codes.BadDevice
	}

	ds.devices[name] = dev
	ds.order = append(ds.order, name)
	return ds.ok
}

func (ds *Devices) addGateInputs(dev *Device, n int) {
	for _, p := range ds.gateInputs[:n] {
		dev.inputPorts = append(dev.inputPorts, p)
		dev.inputSet[p] = true
	}
}

func (ds *Devices) bitQualifier(property string) (Signal, names.Code) {
	switch property {
	case "":
		return Low, ds.codes.NoQualifier
	case "0":
		return Low, ds.ok
	case "1":
		return High, ds.ok
	}
	return Low, ds.codes.InvalidQualifier
}

func (ds *Devices) positiveQualifier(property string) (int, names.Code) {
	if property == "" {
		return 0, ds.codes.NoQualifier
	}
	n, err := strconv.Atoi(property)
	if err != nil || n < 1 {
		return 0, ds.codes.InvalidQualifier
	}
	return n, ds.ok
}

func (ds *Devices) fanInQualifier(property string) (int, names.Code) {
	n, code := ds.positiveQualifier(property)
	if code != ds.ok {
		return 0, code
	}
	if n > symbol.MaxGateInputs {
		return 0, ds.codes.InvalidQualifier
	}
	return n, ds.ok
}

func (ds *Devices) waveformQualifier(property string) ([]Signal, names.Code) {
	if property == "" {
		return nil, ds.codes.NoQualifier
	}
	wave := make([]Signal, len(property))
	for i := 0; i < len(property); i++ {
		switch property[i] {
		case '0':
			wave[i] = Low
		case '1':
			wave[i] = High
		default:
			return nil, ds.codes.InvalidQualifier
		}
	}
	return wave, ds.ok
}

// GetDevice returns the built device for the given name.
func (ds *Devices) GetDevice(name names.ID) (semantic.DeviceView, bool) {
	dev, ok := ds.devices[name]
	if !ok {
		return nil, false
	}
	return dev, true
}

// Get returns the concrete device, for callers inside the engine.
func (ds *Devices) Get(name names.ID) (*Device, bool) {
	dev, ok := ds.devices[name]
	return dev, ok
}

// FindDevices returns device ids in creation order; with kind arguments it
// returns only devices of those kinds.
func (ds *Devices) FindDevices(kinds ...names.ID) []names.ID {
	if len(kinds) == 0 {
		out := make([]names.ID, len(ds.order))
		copy(out, ds.order)
		return out
	}
	var out []names.ID
	for _, id := range ds.order {
		for _, k := range kinds {
			if ds.devices[id].Kind == k {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// SetSwitch changes a switch's held state. It reports false when the device
// does not exist or is not a switch.
func (ds *Devices) SetSwitch(name names.ID, state Signal) bool {
	dev, ok := ds.devices[name]
	if !ok || dev.Kind != ds.kSwitch {
		return false
	}
	dev.switchState = state
	dev.outputs[names.None] = state
	return true
}

// ColdStartup resets every device to its power-on state: clocks and
// waveform generators restart from their first edge, RC outputs rise,
// and flip-flops clear.
func (ds *Devices) ColdStartup() {
	for _, id := range ds.order {
		dev := ds.devices[id]
		dev.counter = 0
		switch dev.Kind {
		case ds.kSwitch:
			dev.outputs[names.None] = dev.switchState
		case ds.kClock:
			dev.outputs[names.None] = Low
		case ds.kRC:
			dev.outputs[names.None] = High
		case ds.kSiggen:
			dev.outputs[names.None] = dev.waveform[0]
		case ds.kDtype:
			dev.memory = Low
			dev.prevClk = Low
			dev.outputs[ds.pQ] = Low
			dev.outputs[ds.pQbar] = High
		default:
			dev.outputs[names.None] = Low
		}
	}
}

// tick advances every time-driven device by one simulation cycle.
func (ds *Devices) tick() {
	for _, id := range ds.order {
		dev := ds.devices[id]
		switch dev.Kind {
		case ds.kClock:
			dev.counter++
			if dev.counter >= dev.halfPeriod {
				dev.counter = 0
				dev.outputs[names.None] = dev.outputs[names.None].invert()
			}
		case ds.kRC:
			dev.counter++
			if dev.counter > dev.timeConstant {
				dev.outputs[names.None] = Low
			}
		case ds.kSiggen:
			dev.counter = (dev.counter + 1) % len(dev.waveform)
			dev.outputs[names.None] = dev.waveform[dev.counter]
		}
	}
}
