// Package console emulates the VGA text-mode console: a grid of 16-bit cells,
// each a CP437 character in the low byte and a color attribute in the high
// byte. Output wraps at the right edge and scrolls at the bottom.
package console

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 25

	tabStop = 8
)

// Color is a VGA palette index.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGrey
	DarkGrey
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	LightBrown
	White
)

// Attr packs a foreground and background color into a cell attribute.
func Attr(fg, bg Color) uint8 {
	return uint8(fg) | uint8(bg)<<4
}

// DefaultAttr is light grey on black.
var DefaultAttr = Attr(LightGrey, Black)

// ErrBadConfig indicates unusable console dimensions.
var ErrBadConfig = errors.New("console: invalid configuration")

// Config sizes the console.
type Config struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultConfig returns the 80x25 text mode geometry.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight}
}

// Validate reports whether the geometry is usable.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadConfig, c.Width, c.Height)
	}
	return nil
}

// Console is a text-mode screen. It implements io.Writer.
//
// NOT thread-safe.
type Console struct {
	width, height int
	cells         []uint16
	row, col      int
	attr          uint8
}

// New returns a cleared console. Invalid dimensions fall back to 80x25.
func New(cfg Config) *Console {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	c := &Console{
		width:  cfg.Width,
		height: cfg.Height,
		cells:  make([]uint16, cfg.Width*cfg.Height),
		attr:   DefaultAttr,
	}
	c.Clear()
	return c
}

func (c *Console) Width() int  { return c.width }
func (c *Console) Height() int { return c.height }

// Cursor returns the position the next character is written at.
func (c *Console) Cursor() (row, col int) { return c.row, c.col }

// SetColor sets the attribute used for subsequent output.
func (c *Console) SetColor(attr uint8) { c.attr = attr }

// Color returns the current attribute.
func (c *Console) Color() uint8 { return c.attr }

// Clear blanks the screen with the current attribute and homes the cursor.
func (c *Console) Clear() {
	blank := entry(' ', c.attr)
	for i := range c.cells {
		c.cells[i] = blank
	}
	c.row, c.col = 0, 0
}

// Cell returns the raw cell at row, col, or 0 outside the screen.
func (c *Console) Cell(row, col int) uint16 {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return 0
	}
	return c.cells[row*c.width+col]
}

// PutChar writes one CP437 byte. '\n' starts a new line and '\b' moves the
// cursor back without erasing.
func (c *Console) PutChar(ch byte) {
	switch ch {
	case '\n':
		c.newline()
	case '\b':
		c.backspace()
	case '\t':
		for {
			c.PutChar(' ')
			if c.col%tabStop == 0 {
				break
			}
		}
	default:
		c.cells[c.row*c.width+c.col] = entry(ch, c.attr)
		if c.col++; c.col == c.width {
			c.newline()
		}
	}
}

// PutRune writes r encoded in CP437. Runes without an encoding print as '?'.
func (c *Console) PutRune(r rune) {
	if r < utf8.RuneSelf {
		c.PutChar(byte(r))
		return
	}
	b, ok := charmap.CodePage437.EncodeRune(r)
	if !ok {
		b = '?'
	}
	c.PutChar(b)
}

// Write decodes p as UTF-8 and writes every rune. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		c.PutRune(r)
		i += size
	}
	return len(p), nil
}

// WriteString is Write for strings.
func (c *Console) WriteString(s string) (int, error) {
	for _, r := range s {
		c.PutRune(r)
	}
	return len(s), nil
}

// Line returns row decoded to UTF-8 with trailing blanks trimmed.
func (c *Console) Line(row int) string {
	if row < 0 || row >= c.height {
		return ""
	}
	var sb strings.Builder
	for _, cell := range c.cells[row*c.width : (row+1)*c.width] {
		sb.WriteRune(charmap.CodePage437.DecodeByte(byte(cell)))
	}
	return strings.TrimRight(sb.String(), " ")
}

// Lines returns every row, see Line.
func (c *Console) Lines() []string {
	lines := make([]string, c.height)
	for row := range lines {
		lines[row] = c.Line(row)
	}
	return lines
}

// Text returns the screen contents with trailing blank rows dropped.
func (c *Console) Text() string {
	lines := c.Lines()
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (c *Console) newline() {
	c.col = 0
	if c.row++; c.row == c.height {
		c.scroll()
		c.row = c.height - 1
	}
}

func (c *Console) backspace() {
	switch {
	case c.col > 0:
		c.col--
	case c.row > 0:
		c.row--
		c.col = c.width - 1
	}
}

func (c *Console) scroll() {
	copy(c.cells, c.cells[c.width:])
	blank := entry(' ', c.attr)
	last := c.cells[(c.height-1)*c.width:]
	for i := range last {
		last[i] = blank
	}
}

func entry(ch byte, attr uint8) uint16 {
	return uint16(ch) | uint16(attr)<<8
}
