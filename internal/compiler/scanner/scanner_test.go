package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitkit/logsim/internal/compiler/names"
	"github.com/circuitkit/logsim/internal/compiler/scanner"
	"github.com/circuitkit/logsim/internal/compiler/symbol"
)

const fixture = `DEVICES: SWITCH switch1 1,
         XOR xor1;

CONNECT: switch1 > xor1.I1;
MONITOR: switch1;
END;`

func newScanner(t *testing.T, content string) (*scanner.Scanner, *names.Table) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circuit.def")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tbl := names.NewTable()
	scn, err := scanner.New(path, tbl, scanner.WithBuffer())
	require.NoError(t, err)
	return scn, tbl
}

func TestTokenizeFixture(t *testing.T) {
	scn, tbl := newScanner(t, fixture)

	want := []struct {
		text string
		kind symbol.Kind
		line int
		col  int
	}{
		{"DEVICES", symbol.Keyword, 1, 1},
		{":", symbol.Colon, 1, 8},
		{"SWITCH", symbol.Keyword, 1, 10},
		{"switch1", symbol.Name, 1, 17},
		{"1", symbol.Integer, 1, 25},
		{",", symbol.Comma, 1, 26},
		{"XOR", symbol.Keyword, 2, 10},
		{"xor1", symbol.Name, 2, 14},
		{";", symbol.Semicolon, 2, 18},
		{"CONNECT", symbol.Keyword, 4, 1},
		{":", symbol.Colon, 4, 8},
		{"switch1", symbol.Name, 4, 10},
		{">", symbol.Arrow, 4, 18},
		{"xor1", symbol.Name, 4, 20},
		{".", symbol.Dot, 4, 24},
		{"I1", symbol.InputPin, 4, 25},
		{";", symbol.Semicolon, 4, 27},
		{"MONITOR", symbol.Keyword, 5, 1},
		{":", symbol.Colon, 5, 8},
		{"switch1", symbol.Name, 5, 10},
		{";", symbol.Semicolon, 5, 17},
		{"END", symbol.Keyword, 6, 1},
		{";", symbol.Semicolon, 6, 4},
	}

	syms := scn.AllSymbols()
	require.Len(t, syms, len(want))
	for i, w := range want {
		text, ok := tbl.Resolve(syms[i].ID)
		require.True(t, ok)
		assert.Equal(t, w.text, text, "symbol %d text", i)
		assert.Equal(t, w.kind, syms[i].Kind, "symbol %d kind", i)
		assert.Equal(t, w.line, syms[i].Line, "symbol %d line", i)
		assert.Equal(t, w.col, syms[i].Column, "symbol %d column", i)
	}
}

func TestGetSymbolRestartsPastEnd(t *testing.T) {
	scn, _ := newScanner(t, fixture)
	total := len(scn.AllSymbols())

	for i := 0; i < total; i++ {
		_, ok := scn.GetSymbol()
		require.True(t, ok, "symbol %d", i)
	}
	_, ok := scn.GetSymbol()
	assert.False(t, ok)

	// The failed read rewinds the cursor, so iteration restarts.
	first, ok := scn.GetSymbol()
	require.True(t, ok)
	assert.Equal(t, scn.AllSymbols()[0], first)
}

func TestComments(t *testing.T) {
	scn, tbl := newScanner(t, "DEVICES # trailing words\n! spanning\ntwo lines ! : END")
	syms := scn.AllSymbols()
	require.Len(t, syms, 3)

	text, _ := tbl.Resolve(syms[0].ID)
	assert.Equal(t, "DEVICES", text)
	text, _ = tbl.Resolve(syms[1].ID)
	assert.Equal(t, ":", text)
	assert.Equal(t, 3, syms[1].Line)
	text, _ = tbl.Resolve(syms[2].ID)
	assert.Equal(t, "END", text)
}

// An unterminated multi-line comment swallows the rest of the file.
func TestUnterminatedComment(t *testing.T) {
	scn, _ := newScanner(t, "DEVICES ! the rest\nnever closes")
	assert.Len(t, scn.AllSymbols(), 1)
}

func TestPrintError(t *testing.T) {
	scn, _ := newScanner(t, fixture)
	syms := scn.AllSymbols()

	ok := scn.PrintError(&syms[6], 0, "m_1")
	assert.True(t, ok)
	assert.Equal(t, "m_1\nLine 2:          XOR xor1;\n                 ^\n", scn.ErrorMessages())
}

func TestPrintErrorArrowOffset(t *testing.T) {
	scn, _ := newScanner(t, fixture)
	syms := scn.AllSymbols()

	scn.PrintError(&syms[11], 2, "m_2")
	assert.Equal(t, "m_2\nLine 4: CONNECT: switch1 > xor1.I1;\n                   ^\n", scn.ErrorMessages())
}

func TestPrintErrorNilSymbol(t *testing.T) {
	scn, _ := newScanner(t, fixture)

	ok := scn.PrintError(nil, 0, "no location")
	assert.False(t, ok)
	assert.Equal(t, "no location\n", scn.ErrorMessages())
}

func TestPreviousAndLast(t *testing.T) {
	scn, tbl := newScanner(t, fixture)

	_, ok := scn.Previous()
	assert.False(t, ok)

	scn.GetSymbol()
	scn.GetSymbol()
	prev, ok := scn.Previous()
	require.True(t, ok)
	text, _ := tbl.Resolve(prev.ID)
	assert.Equal(t, "DEVICES", text)

	last, ok := scn.LastSymbol()
	require.True(t, ok)
	text, _ = tbl.Resolve(last.ID)
	assert.Equal(t, ";", text)
	assert.Equal(t, 6, last.Line)
}

func TestMissingFile(t *testing.T) {
	tbl := names.NewTable()
	_, err := scanner.New(filepath.Join(t.TempDir(), "absent.def"), tbl)
	assert.Error(t, err)
}
