//go:build darwin

package mmfile

import "golang.org/x/sys/unix"

// Flush writes a mapping returned by Map back to its file.
//
// On macOS, msync() requires the address to match the original mmap() address,
// so the whole region is synced; the kernel only writes pages that are dirty.
func Flush(data []byte, off, n int) error {
	if n <= 0 || off < 0 || off+n > len(data) {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}
