// Package keyboard translates PS/2 scancode set 1 into characters and
// buffers them until the shell reads them.
package keyboard

const (
	// DataPort is the PS/2 controller data port.
	DataPort = 0x60
	// StatusPort is the PS/2 controller status port.
	StatusPort = 0x64

	// BufferSize is the capacity of the input ring. One slot stays empty to
	// tell full from empty.
	BufferSize = 256

	releaseBit = 0x80

	scanLeftShift  = 0x2A
	scanRightShift = 0x36
)

// US layout, unshifted.
var normal = [128]byte{
	0, 27, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', '\b',
	'\t', 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n',
	0, 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`', 0,
	'\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0, '*', 0, ' ',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '7', '8', '9', '-', '4', '5', '6',
	'+', '1', '2', '3', '0', '.',
}

// US layout with shift held.
var shifted = [128]byte{
	0, 27, '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '_', '+', '\b',
	'\t', 'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', '{', '}', '\n',
	0, 'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', ':', '"', '~', 0,
	'|', 'Z', 'X', 'C', 'V', 'B', 'N', 'M', '<', '>', '?', 0, '*', 0, ' ',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '7', '8', '9', '-', '4', '5', '6',
	'+', '1', '2', '3', '0', '.',
}

// Keyboard holds shift state and the input ring.
//
// NOT thread-safe. The interrupt layer serialises HandleScancode against
// readers.
type Keyboard struct {
	buf        [BufferSize]byte
	head, tail int
	shift      bool
	dropped    uint64
}

// New returns a keyboard with an empty buffer.
func New() *Keyboard { return &Keyboard{} }

// HandleScancode processes one byte read from the data port. Key releases
// only matter for shift; characters are dropped when the ring is full.
func (k *Keyboard) HandleScancode(code uint8) {
	if code&releaseBit != 0 {
		switch code &^ releaseBit {
		case scanLeftShift, scanRightShift:
			k.shift = false
		}
		return
	}
	switch code {
	case scanLeftShift, scanRightShift:
		k.shift = true
		return
	}

	table := &normal
	if k.shift {
		table = &shifted
	}
	if ch := table[code]; ch != 0 {
		k.push(ch)
	}
}

// Getchar pops the oldest buffered character.
func (k *Keyboard) Getchar() (byte, bool) {
	if k.head == k.tail {
		return 0, false
	}
	ch := k.buf[k.head]
	k.head = (k.head + 1) % BufferSize
	return ch, true
}

// HasInput reports whether a character is buffered.
func (k *Keyboard) HasInput() bool { return k.head != k.tail }

// Buffered returns the number of buffered characters.
func (k *Keyboard) Buffered() int {
	return (k.tail - k.head + BufferSize) % BufferSize
}

// Dropped returns how many characters were lost to a full buffer.
func (k *Keyboard) Dropped() uint64 { return k.dropped }

func (k *Keyboard) push(ch byte) {
	next := (k.tail + 1) % BufferSize
	if next == k.head {
		k.dropped++
		return
	}
	k.buf[k.tail] = ch
	k.tail = next
}

// Stroke is the scancode sequence that types one character.
type Stroke struct {
	Shift bool
	Code  uint8
}

// Codes returns the make/break sequence for the stroke.
func (s Stroke) Codes() []uint8 {
	if !s.Shift {
		return []uint8{s.Code, s.Code | releaseBit}
	}
	return []uint8{scanLeftShift, s.Code, s.Code | releaseBit, scanLeftShift | releaseBit}
}

var reverse = func() map[byte]Stroke {
	m := make(map[byte]Stroke)
	for code := len(normal) - 1; code > 0; code-- {
		if ch := shifted[code]; ch != 0 {
			m[ch] = Stroke{Shift: true, Code: uint8(code)}
		}
	}
	// unshifted wins when both tables produce the same byte
	for code := len(normal) - 1; code > 0; code-- {
		if ch := normal[code]; ch != 0 {
			m[ch] = Stroke{Code: uint8(code)}
		}
	}
	return m
}()

// ScancodeFor returns the stroke that types ch on a US keyboard. Front ends
// use it to feed host key presses through the interrupt path.
func ScancodeFor(ch byte) (Stroke, bool) {
	s, ok := reverse[ch]
	return s, ok
}
