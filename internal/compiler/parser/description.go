package parser

import "github.com/circuitkit/logsim/internal/compiler/symbol"

// Item is the ordered sequence of raw symbols making up one parsed device,
// connection or monitor declaration. A nil Item marks a declaration that
// failed to parse; keeping the placeholder means "this list parsed cleanly"
// stays decidable without a separate counter.
type Item []symbol.Symbol

// Description is the structured output of a syntactically clean parse: one
// ordered item list per section. It is built once per ParseFile call, handed
// to the build phase, and then discarded.
type Description struct {
	Devices     []Item
	Connections []Item
	Monitors    []Item
}
