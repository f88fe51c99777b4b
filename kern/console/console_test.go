package console

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_WriteAndLines(t *testing.T) {
	c := New(DefaultConfig())
	fmt.Fprintf(c, "hello\nworld %d\n", 42)

	assert.Equal(t, "hello", c.Line(0))
	assert.Equal(t, "world 42", c.Line(1))
	assert.Equal(t, "hello\nworld 42", c.Text())
	row, col := c.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 0, col)
}

func TestConsole_CellEncoding(t *testing.T) {
	c := New(DefaultConfig())
	c.SetColor(Attr(White, Blue))
	c.PutChar('A')

	assert.Equal(t, uint16('A')|uint16(0x1F)<<8, c.Cell(0, 0))
	assert.Equal(t, uint16(' ')|uint16(DefaultAttr)<<8, c.Cell(0, 1), "cleared with the default attribute")
	assert.Zero(t, c.Cell(-1, 0))
	assert.Zero(t, c.Cell(0, 80))
}

func TestConsole_CP437(t *testing.T) {
	c := New(DefaultConfig())
	c.WriteString("é░€")

	assert.Equal(t, uint16(0x82), c.Cell(0, 0)&0xFF)
	assert.Equal(t, uint16(0xB0), c.Cell(0, 1)&0xFF)
	assert.Equal(t, uint16('?'), c.Cell(0, 2)&0xFF, "no CP437 encoding")
	assert.Equal(t, "é░?", c.Line(0))
}

func TestConsole_WrapsAtRightEdge(t *testing.T) {
	c := New(Config{Width: 10, Height: 3})
	c.WriteString("0123456789ab")

	assert.Equal(t, "0123456789", c.Line(0))
	assert.Equal(t, "ab", c.Line(1))
}

func TestConsole_Scrolls(t *testing.T) {
	c := New(Config{Width: 10, Height: 3})
	for i := range 5 {
		fmt.Fprintf(c, "line%d\n", i)
	}

	assert.Equal(t, []string{"line3", "line4", ""}, c.Lines())
	row, _ := c.Cursor()
	assert.Equal(t, 2, row)
}

func TestConsole_Backspace(t *testing.T) {
	c := New(Config{Width: 10, Height: 3})
	c.WriteString("abc\b \b")
	assert.Equal(t, "ab", c.Line(0))
	_, col := c.Cursor()
	assert.Equal(t, 2, col)

	c.WriteString("\n\b")
	row, col := c.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 9, col)

	c.Clear()
	c.PutChar('\b')
	row, col = c.Cursor()
	assert.Zero(t, row)
	assert.Zero(t, col)
}

func TestConsole_Tab(t *testing.T) {
	c := New(DefaultConfig())
	c.WriteString("a\tb")
	assert.Equal(t, "a"+strings.Repeat(" ", 7)+"b", c.Line(0))
}

func TestConsole_Clear(t *testing.T) {
	c := New(DefaultConfig())
	c.WriteString("junk\nmore")
	c.Clear()

	assert.Empty(t, c.Text())
	row, col := c.Cursor()
	assert.Zero(t, row)
	assert.Zero(t, col)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.ErrorIs(t, Config{Width: 0, Height: 25}.Validate(), ErrBadConfig)

	c := New(Config{Width: -1, Height: 5})
	assert.Equal(t, DefaultWidth, c.Width())
	assert.Equal(t, DefaultHeight, c.Height())
}
