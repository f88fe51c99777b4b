//go:build !unix

// Package mmfile provides platform-specific helpers for memory-mapping the
// byte regions that back kernel arenas.
package mmfile

import (
	"fmt"
	"os"
)

// Map reads the file into memory when mmap is not available. The contents are
// written back by Flush and by the cleanup function.
func Map(path string, size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	data := make([]byte, size)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}
	copy(data, existing)
	files[&data[0]] = path
	return data, func() error {
		defer delete(files, &data[0])
		return os.WriteFile(path, data, 0o644)
	}, nil
}

// Anon returns size zeroed bytes from the Go heap.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

// files tracks the backing path of each emulated mapping.
var files = map[*byte]string{}

// Flush writes the emulated mapping back to its file.
func Flush(data []byte, off, n int) error {
	if n <= 0 || len(data) == 0 {
		return nil
	}
	path, ok := files[&data[0]]
	if !ok {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
