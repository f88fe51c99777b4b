package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if got, _ := Slice(data, 1, 3); cap(got) != 3 {
		t.Fatalf("Slice should cap the view at its length; cap=%d", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if got, ok := Slice(data, 2, 3); !ok || len(got) != 3 {
		t.Fatalf("Slice should accept a range ending at len")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}

func TestInRange(t *testing.T) {
	specs := []struct {
		size, off, n int
		exp          bool
	}{
		{16, 0, 16, true},
		{16, 12, 4, true},
		{16, 12, 5, false},
		{16, -1, 1, false},
		{16, 0, -1, false},
		{16, math.MaxInt, 1, false},
	}

	for specIndex, spec := range specs {
		if got := InRange(spec.size, spec.off, spec.n); got != spec.exp {
			t.Errorf("[spec %d] InRange(%d, %d, %d) = %v; want %v", specIndex, spec.size, spec.off, spec.n, got, spec.exp)
		}
	}
}
