package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"DEVICES", Keyword},
		{"CONNECT", Keyword},
		{"SIGGEN", Keyword},
		{"RC", Keyword},
		{"I1", InputPin},
		{"I16", InputPin},
		{"DATA", InputPin},
		{"CLK", InputPin},
		{"Q", OutputPin},
		{"QBAR", OutputPin},
		{"12", Integer},
		{"1", Integer},
		{"012", Number},
		{"0", Number},
		{"switch1", Name},
		{"sw_1", Name},
		{"Switch1", String},
		{"1abc", String},
		{"_x", String},
		{";", Semicolon},
		{":", Colon},
		{",", Comma},
		{".", Dot},
		{">", Arrow},
		{"@", Other},
		{"", Other},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.text), "Classify(%q)", c.text)
	}
}

// I17 is past the fan-in limit, so it is an ordinary string.
func TestClassifyPinBounds(t *testing.T) {
	assert.Equal(t, String, Classify("I17"))
	assert.Equal(t, String, Classify("I0"))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("a"))
	assert.True(t, IsName("switch_1"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("1abc"))
	assert.False(t, IsName("aBc"))
	assert.False(t, IsName("a-c"))
}

func TestIndexNotName(t *testing.T) {
	offset, fault, bad := IndexNotName("1abc")
	assert.True(t, bad)
	assert.Equal(t, 0, offset)
	assert.Equal(t, FaultFirstChar, fault)

	offset, fault, bad = IndexNotName("aBc")
	assert.True(t, bad)
	assert.Equal(t, 1, offset)
	assert.Equal(t, FaultNotLower, fault)

	offset, fault, bad = IndexNotName("ab?c")
	assert.True(t, bad)
	assert.Equal(t, 2, offset)
	assert.Equal(t, FaultBadChar, fault)

	_, _, bad = IndexNotName("abc_1")
	assert.False(t, bad)
}

func TestNameFaultText(t *testing.T) {
	assert.Equal(t, "First character is not a lowercase letter", FaultFirstChar.Text())
	assert.Equal(t, "Specific character is not a letter, digit or underscore", FaultBadChar.Text())
	assert.Equal(t, "Specific character is not lowercase", FaultNotLower.Text())
}

func TestIsWaveform(t *testing.T) {
	ok, offset := IsWaveform("010011")
	assert.True(t, ok)
	assert.Equal(t, -1, offset)

	ok, offset = IsWaveform("01a1")
	assert.False(t, ok)
	assert.Equal(t, 2, offset)

	ok, offset = IsWaveform("")
	assert.False(t, ok)
	assert.Equal(t, 0, offset)
}
