package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/semantic"
)

// Monitors records the signal history of chosen outputs, one sample per
// executed cycle, in the order the monitors were declared.
type Monitors struct {
	tbl     *names.Table
	devices *Devices
	network *Network
	codes   semantic.MonitorCodes
	ok      names.Code

	points []endpoint
	traces map[endpoint][]Signal
}

// NewMonitors mints the monitor result codes from tbl. Monitoring an
// undefined device reuses the network's DeviceAbsent code so the handler
// renders both cases the same way.
func NewMonitors(tbl *names.Table, devices *Devices, network *Network) *Monitors {
	c := tbl.Allocate(3)
	return &Monitors{
		tbl:     tbl,
		devices: devices,
		network: network,
		codes: semantic.MonitorCodes{
			NotOutput:      c[0],
			MonitorPresent: c[1],
		},
		ok:     c[2],
		traces: make(map[endpoint][]Signal),
	}
}

// Codes returns the result codes this collaborator minted.
func (m *Monitors) Codes() semantic.MonitorCodes {
	return m.codes
}

// OK is the success code returned by MakeMonitor.
func (m *Monitors) OK() names.Code {
	return m.ok
}

// MakeMonitor attaches a monitor to the given output; port is names.None
// for the anonymous output of source devices and gates. Duplicates are a
// warning, not an error, so the caller decides whether to continue.
func (m *Monitors) MakeMonitor(dev, port names.ID) names.Code {
	d, ok := m.devices.Get(dev)
	if !ok {
		return m.network.Codes().DeviceAbsent
	}
	if !d.HasOutput(port) {
		return m.codes.NotOutput
	}
	p := endpoint{dev: dev, port: port}
	if _, exists := m.traces[p]; exists {
		return m.codes.MonitorPresent
	}
	m.points = append(m.points, p)
	m.traces[p] = nil
	return m.ok
}

// RemoveMonitor detaches the monitor at the given output, reporting whether
// one was attached.
func (m *Monitors) RemoveMonitor(dev, port names.ID) bool {
	p := endpoint{dev: dev, port: port}
	if _, exists := m.traces[p]; !exists {
		return false
	}
	delete(m.traces, p)
	for i, q := range m.points {
		if q == p {
			m.points = append(m.points[:i], m.points[i+1:]...)
			break
		}
	}
	return true
}

// Reset discards every recorded trace but keeps the monitors attached.
func (m *Monitors) Reset() {
	for p := range m.traces {
		m.traces[p] = nil
	}
}

// Record samples every monitored output once.
func (m *Monitors) Record() {
	for _, p := range m.points {
		dev, _ := m.devices.Get(p.dev)
		s, _ := dev.Output(p.port)
		m.traces[p] = append(m.traces[p], s)
	}
}

// Count reports how many monitors are attached.
func (m *Monitors) Count() int {
	return len(m.points)
}

func (m *Monitors) pointName(p endpoint) string {
	name, _ := m.tbl.Resolve(p.dev)
	if p.port != names.None {
		port, _ := m.tbl.Resolve(p.port)
		name += "." + port
	}
	return name
}

// Trace returns the recorded samples for one monitored output.
func (m *Monitors) Trace(dev, port names.ID) ([]Signal, bool) {
	t, ok := m.traces[endpoint{dev: dev, port: port}]
	return t, ok
}

// DisplayTraces writes one line per monitor: the signal name padded to a
// common width, then the trace with '-' for high and '_' for low.
func (m *Monitors) DisplayTraces(w io.Writer) {
	width := 0
	for _, p := range m.points {
		if n := len(m.pointName(p)); n > width {
			width = n
		}
	}
	for _, p := range m.points {
		var b strings.Builder
		for _, s := range m.traces[p] {
			if s == High {
				b.WriteByte('-')
			} else {
				b.WriteByte('_')
			}
		}
		fmt.Fprintf(w, "%-*s: %s\n", width+1, m.pointName(p), b.String())
	}
}
