// Package buf contains little-endian word helpers for byte-addressed storage.
//
// Readers return 0 and writers do nothing when the slice is too short, so a
// malformed address never panics inside the kernel core.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU32LE writes v as a little-endian uint32 into b. It reports false when b
// is too short.
func PutU32LE(b []byte, v uint32) bool {
	if len(b) < 4 {
		return false
	}
	binary.LittleEndian.PutUint32(b, v)
	return true
}
