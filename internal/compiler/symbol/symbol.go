// Package symbol defines the lexical units of the circuit definition
// language and the pure classification rules that assign each token its
// syntactic kind.
package symbol

import (
	"strconv"

	"github.com/circuitkit/logsim/internal/compiler/names"
)

// Kind is the syntactic category of a token.
type Kind int

const (
	Keyword Kind = iota
	Name
	String
	Number
	Integer
	InputPin
	OutputPin
	Semicolon
	Colon
	Comma
	Dot
	Arrow
	Other
)

var kindNames = map[Kind]string{
	Keyword:   "keyword",
	Name:      "name",
	String:    "string",
	Number:    "number",
	Integer:   "integer",
	InputPin:  "input_pin",
	OutputPin: "output_pin",
	Semicolon: "semi-colon",
	Colon:     "colon",
	Comma:     "comma",
	Dot:       "dot",
	Arrow:     "arrow",
	Other:     "other",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "other"
}

// MaxGateInputs is the largest fan-in a logic gate may declare.
const MaxGateInputs = 16

// Keywords is the fixed, case-sensitive keyword set of the language.
var Keywords = []string{
	"DEVICES", "CONNECT", "MONITOR", "END",
	"AND", "NAND", "OR", "NOR", "DTYPE", "XOR",
	"SWITCH", "CLOCK", "RC", "SIGGEN",
}

// OutputPins are the named output ports.
var OutputPins = []string{"Q", "QBAR"}

var (
	keywordSet   = map[string]bool{}
	inputPinSet  = map[string]bool{}
	outputPinSet = map[string]bool{}

	punctuation = map[byte]Kind{
		';': Semicolon,
		':': Colon,
		',': Comma,
		'.': Dot,
		'>': Arrow,
	}
)

func init() {
	for _, kw := range Keywords {
		keywordSet[kw] = true
	}
	for _, p := range OutputPins {
		outputPinSet[p] = true
	}
	for _, p := range []string{"DATA", "SET", "CLEAR", "CLK"} {
		inputPinSet[p] = true
	}
	for i := 1; i <= MaxGateInputs; i++ {
		inputPinSet["I"+strconv.Itoa(i)] = true
	}
}

// Symbol is one token: the interned id of its text, its kind, and the
// 1-based position of its first character. Symbols are immutable once
// created.
type Symbol struct {
	ID     names.ID
	Kind   Kind
	Line   int
	Column int
}

// Classify determines the kind of a token from its text alone.
//
// Precedence: input pins > output pins > keywords > all-digit text (Integer
// without a leading zero, Number otherwise) > alphanumeric/underscore text
// (Name if lowercase and letter-first, String otherwise) > single-character
// punctuation > Other.
func Classify(text string) Kind {
	switch {
	case inputPinSet[text]:
		return InputPin
	case outputPinSet[text]:
		return OutputPin
	case keywordSet[text]:
		return Keyword
	case isDigits(text):
		if text[0] != '0' {
			return Integer
		}
		return Number
	case isWord(text):
		if IsName(text) {
			return Name
		}
		return String
	case len(text) == 1:
		if k, ok := punctuation[text[0]]; ok {
			return k
		}
	}
	return Other
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isWord reports whether s consists only of letters, digits and underscores.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordChar(s[i]) {
			return false
		}
	}
	return true
}

func isWordChar(c byte) bool {
	return isLower(c) || isUpper(c) || isDigit(c) || c == '_'
}

func isLower(c byte) bool { return 'a' <= c && c <= 'z' }
func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// IsName reports whether s is a valid device name: a lowercase letter
// followed by lowercase letters, digits and underscores.
func IsName(s string) bool {
	if s == "" || !isLower(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isLower(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

// NameFault identifies which name-shape rule a string breaks.
type NameFault int

const (
	// FaultFirstChar: the first character is not a lowercase letter.
	FaultFirstChar NameFault = 1
	// FaultBadChar: a character is not a letter, digit or underscore.
	FaultBadChar NameFault = 2
	// FaultNotLower: a character is an uppercase letter.
	FaultNotLower NameFault = 3
)

// Text is the diagnostic fragment appended to the name-shape error message.
func (f NameFault) Text() string {
	switch f {
	case FaultFirstChar:
		return "First character is not a lowercase letter"
	case FaultBadChar:
		return "Specific character is not a letter, digit or underscore"
	case FaultNotLower:
		return "Specific character is not lowercase"
	}
	return ""
}

// IndexNotName locates the first violation of the name rules in s. It
// returns the byte offset of the offending character, the fault kind, and
// true; for a valid name it returns false.
func IndexNotName(s string) (int, NameFault, bool) {
	if s == "" || !isLower(s[0]) {
		return 0, FaultFirstChar, true
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case isUpper(c):
			return i, FaultNotLower, true
		case !isLower(c) && !isDigit(c) && c != '_':
			return i, FaultBadChar, true
		}
	}
	return 0, 0, false
}

// IsWaveform reports whether s is a non-empty run of '0' and '1'
// characters. When it is not, the second result is the byte offset of the
// first offending character; when it is, the offset is -1.
func IsWaveform(s string) (bool, int) {
	if s == "" {
		return false, 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false, i
		}
	}
	return true, -1
}
