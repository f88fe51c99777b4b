package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers. Tests replace it for deterministic output.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
