// Package parser analyses the syntactic and semantic correctness of the
// symbols received from the scanner and then builds the logic network.
//
// Syntax errors never abort the parse: each one is counted, reported
// through the scanner, and followed by a resynchronization to the next
// comma, semicolon or section keyword so sibling declarations still get
// checked. The building phase runs only when the syntax error count is
// exactly zero.
package parser

import (
	"fmt"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/scanner"
	"github.com/circuitkit/logsim/internal/compiler/semantic"
	"github.com/circuitkit/logsim/internal/compiler/symbol"
)

// Numbered syntax error taxonomy. The numbering is part of the tool's
// documented behavior, so it stays stable even where the gaps show.
const (
	errNoDevicesKeyword = 1
	errNoConnectKeyword = 2
	errNoMonitorKeyword = 3
	errNoEndKeyword     = 4
	errNoDevices        = 5
	errDeviceParams     = 6
	errFixedParams      = 7
	errBadDeviceKeyword = 8
	errBadName          = 9
	errBadClockCycle    = 10
	errBadSwitchState   = 11
	errBadFanIn         = 12
	errConnPunctuation  = 13
	errBadOutputPin     = 14
	errNoArrow          = 15
	errNoDotInput       = 16
	errBadInputPin      = 17
	errMonPunctuation   = 18
	errDevPunctuation   = 19
	errNoColon          = 20
	errNoEndSemicolon   = 21
	errPrematureEOF     = 22
	errBadWaveform      = 23
)

var syntaxErrorMessages = map[int]string{
	errNoDevicesKeyword: "NameError: File should start with keyword 'DEVICES'",
	errNoConnectKeyword: "NameError: ';' after the last device should be followed by keyword 'CONNECT'.",
	errNoMonitorKeyword: "NameError: ';' after the last connection should be followed by keyword 'MONITOR'.",
	errNoEndKeyword:     "NameError: ';' after the last monitor should be followed by keyword 'END'.",
	errNoDevices:        "ValueError: There should be at least one device.",
	errDeviceParams:     "ValueError: The required number of parameters for a device of the type CLOCK/SWITCH/AND/OR/NAND/NOR/RC/SIGGEN is 3. Should also check for incorrect placement of or missing punctuations.",
	errFixedParams:      "ValueError: The required number of parameters for a device of the type XOR/DTYPE is 2. Should also check for incorrect placement of or missing punctuations.",
	errBadDeviceKeyword: "NameError: 1st parameter of a device should be the keyword for that device.",
	errBadName:          "TypeError: Device name should be a lowercase alphanumeric string (including '_').",
	errBadClockCycle:    "ValueError: Clock speed/RC time constant should be a positive integer.",
	errBadSwitchState:   "ValueError: Switch state should be either 0 or 1.",
	errBadFanIn:         "ValueError: Number of inputs for an AND/NAND/OR/NOR device should be between 1 and 16.",
	errConnPunctuation:  "TypeError: Connections should be separated by ',' and ended by ';'. Should also check for excessive parameters of a connection.",
	errBadOutputPin:     "TypeError: Output pins can only be Q or QBAR.",
	errNoArrow:          "TypeError: 2nd parameter of a connection should be '>'.",
	errNoDotInput:       "TypeError: 3rd parameter of a connection must be a device name followed by '.input_pin'.",
	errBadInputPin:      "NameError: The input pin should be one of the following: I1, I2,...,I16, DATA, CLK, SET, CLEAR.",
	errMonPunctuation:   "TypeError: Monitors should be separated by ',' and ended by ';'. Should also check for excessive parameters of a monitor.",
	errDevPunctuation:   "TypeError: Devices should be separated by ',' and ended by ';'. Should also check for excessive parameters of a device.",
	errNoColon:          "NameError: DEVICES, CONNECT and MONITOR should be followed by ':'.",
	errNoEndSemicolon:   "NameError: 'END' should be followed by ';'.",
	errPrematureEOF:     "RuntimeError: File ends too early. Should check for missing sections.",
	errBadWaveform:      "ValueError: Siggen waveform should only consist of 0s and 1s.",
}

// propertyRule selects how a device's property token is validated.
type propertyRule int

const (
	propNone     propertyRule = iota
	propClock                 // positive integer without a leading zero
	propSwitch                // literal 0 or 1
	propFanIn                 // literal 1..16
	propWaveform              // non-empty run of 0s and 1s
)

// deviceShape is the parsing strategy for one device keyword: which
// property rule applies and which arity error fires when a token is
// missing.
type deviceShape struct {
	rule     propertyRule
	arityErr int
}

// Parser consumes symbols, enforces the grammar, recovers from syntax
// errors, and drives device, connection and monitor construction through
// the collaborators.
type Parser struct {
	tbl      *names.Table
	devices  semantic.Devices
	network  semantic.Network
	monitors semantic.Monitors
	scn      *scanner.Scanner
	handler  *semantic.Handler

	sym        symbol.Symbol
	eof        bool
	errorCount int

	kwDevices names.ID
	kwConnect names.ID
	kwMonitor names.ID
	kwEnd     names.ID
	shapes    map[names.ID]deviceShape
	fanIn     map[names.ID]bool
	bitState  map[names.ID]bool
}

// New wires a parser to its collaborators. The scanner must share tbl, and
// one parser parses exactly one file: re-parsing needs a fresh
// table/scanner/parser triple.
func New(tbl *names.Table, devices semantic.Devices, network semantic.Network, monitors semantic.Monitors, scn *scanner.Scanner) *Parser {
	p := &Parser{
		tbl:      tbl,
		devices:  devices,
		network:  network,
		monitors: monitors,
		scn:      scn,
		handler:  semantic.NewHandler(tbl, devices, network, monitors, scn),
	}
	p.kwDevices = tbl.Intern("DEVICES")
	p.kwConnect = tbl.Intern("CONNECT")
	p.kwMonitor = tbl.Intern("MONITOR")
	p.kwEnd = tbl.Intern("END")

	p.shapes = map[names.ID]deviceShape{
		tbl.Intern("CLOCK"):  {rule: propClock, arityErr: errDeviceParams},
		tbl.Intern("RC"):     {rule: propClock, arityErr: errDeviceParams},
		tbl.Intern("SWITCH"): {rule: propSwitch, arityErr: errDeviceParams},
		tbl.Intern("SIGGEN"): {rule: propWaveform, arityErr: errDeviceParams},
		tbl.Intern("AND"):    {rule: propFanIn, arityErr: errDeviceParams},
		tbl.Intern("NAND"):   {rule: propFanIn, arityErr: errDeviceParams},
		tbl.Intern("OR"):     {rule: propFanIn, arityErr: errDeviceParams},
		tbl.Intern("NOR"):    {rule: propFanIn, arityErr: errDeviceParams},
		tbl.Intern("XOR"):    {rule: propNone, arityErr: errFixedParams},
		tbl.Intern("DTYPE"):  {rule: propNone, arityErr: errFixedParams},
	}

	p.fanIn = make(map[names.ID]bool, symbol.MaxGateInputs)
	for i := 1; i <= symbol.MaxGateInputs; i++ {
		p.fanIn[tbl.Intern(fmt.Sprintf("%d", i))] = true
	}
	p.bitState = map[names.ID]bool{
		tbl.Intern("0"): true,
		tbl.Intern("1"): true,
	}
	return p
}

// ErrorCount reports how many syntax errors have been recorded.
func (p *Parser) ErrorCount() int {
	return p.errorCount
}

func (p *Parser) syntaxError(index int, sym *symbol.Symbol) {
	p.reportSyntax(index, sym, 0, "")
}

func (p *Parser) reportSyntax(index int, sym *symbol.Symbol, arrowOffset int, suffix string) {
	p.errorCount++
	p.scn.PrintError(sym, arrowOffset, syntaxErrorMessages[index]+suffix)
}

// fetch advances to the next symbol. Running out of input is a structural
// error: it is reported exactly once, at the last cached symbol, and every
// later fetch refuses immediately so the exhausted stream is never
// replayed.
func (p *Parser) fetch() bool {
	if p.eof {
		return false
	}
	sym, ok := p.scn.GetSymbol()
	if !ok {
		p.eof = true
		if last, lok := p.scn.LastSymbol(); lok {
			p.syntaxError(errPrematureEOF, &last)
		} else {
			p.syntaxError(errPrematureEOF, nil)
		}
		return false
	}
	p.sym = sym
	return true
}

func (p *Parser) atDelimiter() bool {
	return p.sym.Kind == symbol.Comma || p.sym.Kind == symbol.Semicolon
}

// resync discards symbols up to the next comma or semicolon, or the given
// section keyword when stop is a valid id.
func (p *Parser) resync(stop names.ID) {
	for !p.atDelimiter() && (stop == names.None || p.sym.ID != stop) {
		if !p.fetch() {
			return
		}
	}
}

// checkName verifies that the current symbol is a device name; if not it
// reports the name-shape error with the caret on the first offending
// character.
func (p *Parser) checkName() bool {
	if p.sym.Kind == symbol.Name {
		return true
	}
	text, _ := p.tbl.Resolve(p.sym.ID)
	offset, fault, _ := symbol.IndexNotName(text)
	p.reportSyntax(errBadName, &p.sym, offset, fault.Text())
	return false
}

// checkProperty validates the current symbol against the device's property
// rule, reporting the matching error when it fails.
func (p *Parser) checkProperty(rule propertyRule) bool {
	switch rule {
	case propClock:
		if p.sym.Kind == symbol.Integer {
			return true
		}
		p.syntaxError(errBadClockCycle, &p.sym)
	case propSwitch:
		if p.bitState[p.sym.ID] {
			return true
		}
		p.syntaxError(errBadSwitchState, &p.sym)
	case propFanIn:
		if p.fanIn[p.sym.ID] {
			return true
		}
		p.syntaxError(errBadFanIn, &p.sym)
	case propWaveform:
		text, _ := p.tbl.Resolve(p.sym.ID)
		valid, offset := symbol.IsWaveform(text)
		if valid {
			return true
		}
		p.reportSyntax(errBadWaveform, &p.sym, offset, "")
	}
	return false
}

// parseDevice parses one device declaration, appending its symbols to the
// item list, or a nil placeholder when it is malformed.
func (p *Parser) parseDevice(items *[]Item) {
	shape, known := p.shapes[p.sym.ID]
	if !known {
		*items = append(*items, nil)
		p.syntaxError(errBadDeviceKeyword, &p.sym)
		p.resync(names.None)
		return
	}
	item := Item{p.sym}
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.atDelimiter() {
		*items = append(*items, nil)
		p.syntaxError(shape.arityErr, &p.sym)
		return
	}
	if !p.checkName() {
		*items = append(*items, nil)
		p.resync(names.None)
		return
	}
	item = append(item, p.sym)
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if shape.rule != propNone {
		if p.atDelimiter() {
			*items = append(*items, nil)
			p.syntaxError(shape.arityErr, &p.sym)
			return
		}
		if !p.checkProperty(shape.rule) {
			*items = append(*items, nil)
			p.resync(names.None)
			return
		}
		item = append(item, p.sym)
		if !p.fetch() {
			*items = append(*items, nil)
			return
		}
	}
	if p.atDelimiter() {
		*items = append(*items, item)
		return
	}
	*items = append(*items, nil)
	p.syntaxError(errDevPunctuation, &p.sym)
	p.resync(p.kwConnect)
}

// parseConnection parses one connection:
// device ['.' output_pin] '>' device '.' input_pin.
func (p *Parser) parseConnection(items *[]Item) {
	if !p.checkName() {
		*items = append(*items, nil)
		p.resync(names.None)
		return
	}
	item := Item{p.sym}
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.sym.Kind == symbol.Dot {
		item = append(item, p.sym)
		if !p.fetch() {
			*items = append(*items, nil)
			return
		}
		if p.sym.Kind != symbol.OutputPin {
			*items = append(*items, nil)
			p.syntaxError(errBadOutputPin, &p.sym)
			p.resync(names.None)
			return
		}
		item = append(item, p.sym)
		if !p.fetch() {
			*items = append(*items, nil)
			return
		}
	}
	if p.sym.Kind != symbol.Arrow {
		*items = append(*items, nil)
		p.syntaxError(errNoArrow, &p.sym)
		p.resync(names.None)
		return
	}
	item = append(item, p.sym)
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if !p.checkName() {
		*items = append(*items, nil)
		p.resync(names.None)
		return
	}
	item = append(item, p.sym)
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.sym.Kind != symbol.Dot {
		*items = append(*items, nil)
		p.syntaxError(errNoDotInput, &p.sym)
		p.resync(names.None)
		return
	}
	item = append(item, p.sym)
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.sym.Kind != symbol.InputPin {
		*items = append(*items, nil)
		p.syntaxError(errBadInputPin, &p.sym)
		// The pin is the last element, so the delimiter should be next.
		p.fetch()
		return
	}
	item = append(item, p.sym)
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.atDelimiter() {
		*items = append(*items, item)
		return
	}
	*items = append(*items, nil)
	p.syntaxError(errConnPunctuation, &p.sym)
	p.resync(p.kwMonitor)
}

// parseMonitor parses one monitor: device ['.' output_pin].
func (p *Parser) parseMonitor(items *[]Item) {
	if !p.checkName() {
		*items = append(*items, nil)
		p.resync(names.None)
		return
	}
	item := Item{p.sym}
	if !p.fetch() {
		*items = append(*items, nil)
		return
	}
	if p.sym.Kind == symbol.Dot {
		item = append(item, p.sym)
		if !p.fetch() {
			*items = append(*items, nil)
			return
		}
		if p.sym.Kind != symbol.OutputPin {
			*items = append(*items, nil)
			p.syntaxError(errBadOutputPin, &p.sym)
			p.resync(names.None)
			return
		}
		item = append(item, p.sym)
		if !p.fetch() {
			*items = append(*items, nil)
			return
		}
	}
	if p.atDelimiter() {
		*items = append(*items, item)
		return
	}
	*items = append(*items, nil)
	p.syntaxError(errMonPunctuation, &p.sym)
	p.resync(p.kwEnd)
}

// section describes one comma-separated, semicolon-terminated declaration
// list.
type section struct {
	parse    func(*[]Item)
	punctErr int
	stop     names.ID
	required bool
}

// parseSection parses one declaration list. It returns nil when any item
// failed, when input ran out, or when a required list is empty; otherwise
// the fully captured item list.
func (p *Parser) parseSection(sec section) []Item {
	var items []Item
	if !p.fetch() {
		return nil
	}
	if p.sym.Kind == symbol.Semicolon {
		if sec.required {
			p.syntaxError(errNoDevices, &p.sym)
		}
		if !p.fetch() {
			return nil
		}
		if sec.required {
			return nil
		}
		return items
	}
	sec.parse(&items)
	if p.eof {
		return nil
	}
	for p.sym.Kind == symbol.Comma {
		if !p.fetch() {
			return nil
		}
		if p.sym.ID == sec.stop {
			// A trailing comma ran straight into the next section keyword;
			// the comma is the offending symbol.
			if prev, ok := p.scn.Previous(); ok {
				p.syntaxError(sec.punctErr, &prev)
			} else {
				p.syntaxError(sec.punctErr, &p.sym)
			}
			break
		}
		sec.parse(&items)
		if p.eof {
			return nil
		}
	}
	if p.sym.Kind == symbol.Semicolon {
		if !p.fetch() {
			return nil
		}
		for _, it := range items {
			if it == nil {
				return nil
			}
		}
		return items
	}
	if p.sym.ID == sec.stop {
		return nil
	}
	// The list ran into the next section without its terminating ';'; point
	// at the symbol before the stray one.
	if prev, ok := p.scn.Previous(); ok {
		p.syntaxError(sec.punctErr, &prev)
	} else {
		p.syntaxError(sec.punctErr, &p.sym)
	}
	for p.sym.ID != sec.stop {
		if !p.fetch() {
			return nil
		}
	}
	return nil
}

// parseFile checks the syntax of the whole file and collects the raw
// description, which is meaningful only when the error count stayed zero.
func (p *Parser) parseFile() *Description {
	desc := &Description{}
	sym, ok := p.scn.GetSymbol()
	if !ok {
		p.eof = true
		p.errorCount++
		p.scn.PrintError(nil, 0, syntaxErrorMessages[errPrematureEOF])
		return desc
	}
	p.sym = sym

	if p.sym.ID != p.kwDevices {
		p.syntaxError(errNoDevicesKeyword, &p.sym)
	}
	if !p.fetch() {
		return desc
	}
	if p.sym.Kind != symbol.Colon {
		p.syntaxError(errNoColon, &p.sym)
	}
	desc.Devices = p.parseSection(section{
		parse:    p.parseDevice,
		punctErr: errDevPunctuation,
		stop:     p.kwConnect,
		required: true,
	})
	if p.eof {
		return desc
	}

	if p.sym.ID != p.kwConnect {
		p.syntaxError(errNoConnectKeyword, &p.sym)
	}
	if !p.fetch() {
		return desc
	}
	if p.sym.Kind != symbol.Colon {
		p.syntaxError(errNoColon, &p.sym)
	}
	desc.Connections = p.parseSection(section{
		parse:    p.parseConnection,
		punctErr: errConnPunctuation,
		stop:     p.kwMonitor,
	})
	if p.eof {
		return desc
	}

	if p.sym.ID != p.kwMonitor {
		p.syntaxError(errNoMonitorKeyword, &p.sym)
	}
	if !p.fetch() {
		return desc
	}
	if p.sym.Kind != symbol.Colon {
		p.syntaxError(errNoColon, &p.sym)
	}
	desc.Monitors = p.parseSection(section{
		parse:    p.parseMonitor,
		punctErr: errMonPunctuation,
		stop:     p.kwEnd,
	})
	if p.eof {
		return desc
	}

	if p.sym.ID != p.kwEnd {
		p.syntaxError(errNoEndKeyword, &p.sym)
	}
	// Running out of input right after END is a missing semicolon, not a
	// premature end of file.
	sym, ok = p.scn.GetSymbol()
	if !ok {
		p.eof = true
		if last, lok := p.scn.LastSymbol(); lok {
			p.syntaxError(errNoEndSemicolon, &last)
		} else {
			p.syntaxError(errNoEndSemicolon, nil)
		}
		return desc
	}
	p.sym = sym
	if p.sym.Kind != symbol.Semicolon {
		p.syntaxError(errNoEndSemicolon, &p.sym)
	}
	return desc
}

// ParseFile checks the file's syntax. The description is returned only when
// the syntax error count is exactly zero.
func (p *Parser) ParseFile() (*Description, bool) {
	desc := p.parseFile()
	if p.errorCount == 0 {
		return desc, true
	}
	return nil, false
}

// ParseNetwork parses the circuit definition file and, when the syntax is
// clean, builds the logic network by mutating the collaborators in place.
// It reports whether the file is both syntactically and semantically
// correct.
func (p *Parser) ParseNetwork() bool {
	desc, ok := p.ParseFile()
	if !ok {
		msg := fmt.Sprintf("%d syntax errors detected in the file", p.errorCount)
		if p.errorCount == 1 {
			msg = "1 syntax error detected in the file"
		}
		p.scn.PrintError(nil, 0, msg)
		return false
	}
	return p.buildNetwork(desc)
}

func (p *Parser) buildNetwork(desc *Description) bool {
	if !p.buildDevices(desc.Devices) {
		return false
	}
	if !p.buildConnections(desc.Connections) {
		return false
	}
	return p.buildMonitors(desc.Monitors)
}

func (p *Parser) buildDevices(items []Item) bool {
	for _, dev := range items {
		kind := dev[0].ID
		name := dev[1].ID
		property := ""
		if len(dev) == 3 {
			property, _ = p.tbl.Resolve(dev[2].ID)
		}
		code := p.devices.MakeDevice(name, kind, property)
		if p.handler.HandleError(code, dev) {
			return false
		}
	}
	return true
}

func (p *Parser) buildConnections(items []Item) bool {
	for _, con := range items {
		first := con[0].ID
		firstPort, secondPort := names.None, names.None
		var second names.ID
		if con[1].Kind == symbol.Dot {
			firstPort = con[2].ID
			second = con[4].ID
			if con[5].Kind == symbol.Dot {
				secondPort = con[6].ID
			}
		} else {
			second = con[2].ID
			if con[3].Kind == symbol.Dot {
				secondPort = con[4].ID
			}
		}
		code := p.network.MakeConnection(first, firstPort, second, secondPort)
		if p.handler.HandleError(code, con) {
			return false
		}
	}
	if !p.network.CheckNetwork() {
		var at symbol.Symbol
		if len(items) > 0 {
			last := items[len(items)-1]
			at = last[len(last)-1]
		} else if last, ok := p.scn.LastSymbol(); ok {
			at = last
		}
		p.handler.DisplayInputNotConnected(at)
		return false
	}
	return true
}

func (p *Parser) buildMonitors(items []Item) bool {
	for _, mon := range items {
		dev := mon[0].ID
		port := names.None
		if len(mon) == 3 {
			port = mon[2].ID
		}
		code := p.monitors.MakeMonitor(dev, port)
		if p.handler.HandleError(code, mon) {
			return false
		}
	}
	return true
}
