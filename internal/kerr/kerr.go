// Package kerr defines the error taxonomy shared by the kernel packages.
//
// Every package-level sentinel in kern/... wraps exactly one of these kinds,
// so a collaborator can decide how to surface a failure with errors.Is
// without knowing which component produced it.
package kerr

import "errors"

var (
	// ErrInvalidArgument reports a request that can never succeed as given,
	// such as a zero-size allocation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExhausted reports that a bounded resource (free blocks, process
	// slots, file slots) has run out.
	ErrExhausted = errors.New("exhausted")

	// ErrNotFound reports an operation on an identifier that does not exist.
	ErrNotFound = errors.New("not found")
)
