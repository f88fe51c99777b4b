package buf

import "testing"

func TestU32LE(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U32LE(data[1:]); got != 0x89674523 {
		t.Fatalf("U32LE at 1 = 0x%x, want 0x89674523", got)
	}
	if U32LE(data[:3]) != 0 {
		t.Fatalf("short reads should return 0")
	}
}

func TestPutU32LE(t *testing.T) {
	out := make([]byte, 4)
	if !PutU32LE(out, 0xdeadbeef) {
		t.Fatalf("PutU32LE should succeed on a 4-byte slice")
	}
	if got := U32LE(out); got != 0xdeadbeef {
		t.Fatalf("round trip = 0x%x, want 0xdeadbeef", got)
	}
	if out[0] != 0xef || out[3] != 0xde {
		t.Fatalf("PutU32LE wrote big-endian bytes: %x", out)
	}
	if PutU32LE(out[:3], 1) {
		t.Fatalf("writes into short slices should report false")
	}
}
