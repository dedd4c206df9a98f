// Package scanner reads a circuit definition file and translates its
// characters into symbols usable by the parser.
//
// The whole file is tokenized once at construction and cached, so the
// symbol sequence is finite and replayable; source lines are cached at the
// same time so that diagnostics never have to reopen the file.
package scanner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/symbol"
)

// sink receives rendered diagnostics. The direct implementation writes them
// as they occur; the buffered one accumulates them for bulk retrieval by an
// embedding host.
type sink interface {
	emit(s string)
}

type writerSink struct {
	w io.Writer
}

func (s writerSink) emit(m string) {
	io.WriteString(s.w, m)
}

type bufferSink struct {
	b *strings.Builder
}

func (s bufferSink) emit(m string) {
	s.b.WriteString(m)
}

// Option configures a Scanner at construction.
type Option func(*Scanner)

// WithOutput makes the scanner write diagnostics directly to w. This is the
// default, with w = os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Scanner) {
		s.buf = nil
		s.out = writerSink{w: w}
	}
}

// WithBuffer makes the scanner accumulate diagnostics instead of writing
// them; the accumulated text is retrieved with ErrorMessages.
func WithBuffer() Option {
	return func(s *Scanner) {
		s.buf = &strings.Builder{}
		s.out = bufferSink{b: s.buf}
	}
}

// Scanner holds the cached symbol sequence of one definition file and a
// cursor into it.
type Scanner struct {
	tbl     *names.Table
	lines   []string
	symbols []symbol.Symbol
	cursor  int

	out sink
	buf *strings.Builder
}

// New reads and tokenizes the definition file at path. The scanner interns
// every token into tbl, so ids seen by the parser and the collaborators all
// come from the same table.
func New(path string, tbl *names.Table, opts ...Option) (*Scanner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		tbl:    tbl,
		cursor: -1,
		out:    writerSink{w: os.Stdout},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lines = splitLines(content)
	s.tokenize(content)
	return s, nil
}

func splitLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// tokenize performs the single left-to-right pass over the file. A word run
// starts at a letter or digit and consumes everything up to whitespace or
// one of ";:,.". Any other stray character folds into the word and is
// rejected later by name validation, not here.
func (s *Scanner) tokenize(content []byte) {
	line, col := 1, 1
	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '\n':
			line++
			col = 1
			i++
		case c == ' ' || c == '\t' || c == '\r':
			col++
			i++
		case c == '#':
			// Line comment, consumed up to (not including) the newline.
			for i < len(content) && content[i] != '\n' {
				i++
			}
		case c == '!':
			// Multi-line comment. An unterminated one discards the rest
			// of the file; the parser then reports a premature end of
			// file at the last cached symbol.
			col++
			i++
			for i < len(content) && content[i] != '!' {
				if content[i] == '\n' {
					line++
					col = 1
				} else {
					col++
				}
				i++
			}
			if i < len(content) {
				col++
				i++
			}
		case isWordStart(c):
			startLine, startCol := line, col
			start := i
			for i < len(content) && !isWordEnd(content[i]) {
				col++
				i++
			}
			s.add(string(content[start:i]), startLine, startCol)
		default:
			s.add(string(c), line, col)
			col++
			i++
		}
	}
}

func isWordStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// isWordEnd reports whether c terminates a word run. This set is narrower
// than the set of valid name characters on purpose.
func isWordEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ';', ':', ',', '.':
		return true
	}
	return false
}

func (s *Scanner) add(text string, line, col int) {
	s.symbols = append(s.symbols, symbol.Symbol{
		ID:     s.tbl.Intern(text),
		Kind:   symbol.Classify(text),
		Line:   line,
		Column: col,
	})
}

// GetSymbol advances the cursor and returns the next symbol. Exactly one
// call past the end returns false and rewinds the cursor, so a subsequent
// call restarts iteration from the first symbol.
func (s *Scanner) GetSymbol() (symbol.Symbol, bool) {
	s.cursor++
	if s.cursor >= len(s.symbols) {
		s.cursor = -1
		return symbol.Symbol{}, false
	}
	return s.symbols[s.cursor], true
}

// AllSymbols returns the cached symbol sequence. It is independent of the
// cursor and idempotent across calls.
func (s *Scanner) AllSymbols() []symbol.Symbol {
	return s.symbols
}

// LastSymbol returns the last cached symbol, the location used for
// premature end-of-file diagnostics.
func (s *Scanner) LastSymbol() (symbol.Symbol, bool) {
	if len(s.symbols) == 0 {
		return symbol.Symbol{}, false
	}
	return s.symbols[len(s.symbols)-1], true
}

// Previous returns the symbol immediately before the cursor.
func (s *Scanner) Previous() (symbol.Symbol, bool) {
	if s.cursor <= 0 || s.cursor > len(s.symbols) {
		return symbol.Symbol{}, false
	}
	return s.symbols[s.cursor-1], true
}

// Line returns source line n (1-based), independent of the cursor.
func (s *Scanner) Line(n int) (string, bool) {
	if n < 1 || n > len(s.lines) {
		return "", false
	}
	return s.lines[n-1], true
}

// PrintError renders a three-line diagnostic: the message, the source line
// prefixed with "Line N: ", and a caret aligned under column
// sym.Column+arrowOffset. When sym is nil or its line cannot be read, only
// the message is emitted and PrintError returns false.
func (s *Scanner) PrintError(sym *symbol.Symbol, arrowOffset int, message string) bool {
	if sym == nil {
		s.out.emit(message + "\n")
		return false
	}
	text, ok := s.Line(sym.Line)
	if !ok {
		s.out.emit(message + "\n")
		return false
	}
	prefix := fmt.Sprintf("Line %d: ", sym.Line)
	caret := strings.Repeat(" ", len(prefix)+sym.Column+arrowOffset-1) + "^"
	s.out.emit(message + "\n" + prefix + text + "\n" + caret + "\n")
	return true
}

// ErrorMessages returns the diagnostics accumulated so far. It is empty
// unless the scanner was constructed with WithBuffer.
func (s *Scanner) ErrorMessages() string {
	if s.buf == nil {
		return ""
	}
	return s.buf.String()
}
