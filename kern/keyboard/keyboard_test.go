package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(k *Keyboard, s string) {
	for i := 0; i < len(s); i++ {
		st, ok := ScancodeFor(s[i])
		if !ok {
			continue
		}
		for _, code := range st.Codes() {
			k.HandleScancode(code)
		}
	}
}

func drain(k *Keyboard) string {
	var out []byte
	for {
		ch, ok := k.Getchar()
		if !ok {
			return string(out)
		}
		out = append(out, ch)
	}
}

func TestKeyboard_Translate(t *testing.T) {
	k := New()
	k.HandleScancode(0x23) // h
	k.HandleScancode(0x23 | 0x80)
	k.HandleScancode(0x17) // i
	k.HandleScancode(0x1C) // enter

	require.True(t, k.HasInput())
	assert.Equal(t, 3, k.Buffered())
	assert.Equal(t, "hi\n", drain(k))
	assert.False(t, k.HasInput())
}

func TestKeyboard_Shift(t *testing.T) {
	k := New()
	k.HandleScancode(scanLeftShift)
	k.HandleScancode(0x23)
	k.HandleScancode(0x02) // 1
	k.HandleScancode(scanLeftShift | 0x80)
	k.HandleScancode(0x23)

	assert.Equal(t, "H!h", drain(k))
}

func TestKeyboard_IgnoresUnmapped(t *testing.T) {
	k := New()
	k.HandleScancode(0x00)
	k.HandleScancode(0x1D) // ctrl
	k.HandleScancode(0x3B) // F1
	k.HandleScancode(0x7F)
	assert.False(t, k.HasInput())
}

func TestKeyboard_FullBufferDrops(t *testing.T) {
	k := New()
	for range BufferSize + 10 {
		k.HandleScancode(0x1E) // a
	}
	assert.Equal(t, BufferSize-1, k.Buffered())
	assert.Equal(t, uint64(11), k.Dropped())

	ch, ok := k.Getchar()
	require.True(t, ok)
	assert.Equal(t, byte('a'), ch)
	k.HandleScancode(0x30) // b
	assert.Equal(t, BufferSize-1, k.Buffered())
}

func TestScancodeFor_RoundTrip(t *testing.T) {
	const text = "Hello, World! ls -la ~/x_{1}\n"
	k := New()
	typeString(k, text)
	assert.Equal(t, text, drain(k))
}

func TestScancodeFor_PrefersUnshifted(t *testing.T) {
	st, ok := ScancodeFor('*')
	require.True(t, ok)
	assert.False(t, st.Shift, "keypad * needs no shift")

	st, ok = ScancodeFor('A')
	require.True(t, ok)
	assert.True(t, st.Shift)
	assert.Equal(t, uint8(0x1E), st.Code)

	_, ok = ScancodeFor(0x01)
	assert.False(t, ok)
}
