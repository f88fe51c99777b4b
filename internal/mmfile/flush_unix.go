//go:build unix && !darwin

package mmfile

import "golang.org/x/sys/unix"

// Flush writes the page-aligned range [off, off+n) of a mapping returned by
// Map back to its file.
func Flush(data []byte, off, n int) error {
	if n <= 0 || off < 0 || off+n > len(data) {
		return nil
	}
	return unix.Msync(data[off:off+n], unix.MS_SYNC)
}
