package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsUUID(t *testing.T) {
	a, b := New(), New()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNew_Stub(t *testing.T) {
	orig := NewFunc
	t.Cleanup(func() { NewFunc = orig })

	NewFunc = func() string { return "boot-1" }
	assert.Equal(t, "boot-1", New())
}
