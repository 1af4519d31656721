package locking

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	m := NewManager(t.TempDir(), zerolog.Nop())

	require.NoError(t, m.Acquire("prefetch"))
	assert.Error(t, m.Acquire("prefetch"), "second acquire must fail while held")

	m.Release("prefetch")
	assert.NoError(t, m.Acquire("prefetch"), "lock must be reusable after release")
}

func TestReleaseUnheldLock(t *testing.T) {
	m := NewManager(t.TempDir(), zerolog.Nop())

	// Must not panic or leave anything behind.
	m.Release("never-acquired")
	assert.NoError(t, m.Acquire("never-acquired"))
}

func TestIndependentLocks(t *testing.T) {
	m := NewManager(t.TempDir(), zerolog.Nop())

	require.NoError(t, m.Acquire("a"))
	assert.NoError(t, m.Acquire("b"))
}
