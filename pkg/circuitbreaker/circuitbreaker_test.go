package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream unavailable")

func failing() error { return errDownstream }
func ok() error      { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errDownstream)
	}
	assert.Equal(t, StateOpen, cb.State())

	// Calls are rejected without reaching the downstream.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(failing))

	// Only one failure since the last success; still closed.
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenReopensOnFailure(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(failing))
	assert.Equal(t, StateOpen, cb.State())
}

func TestZeroSettingsGetDefaults(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "defaults"})
	assert.Equal(t, defaultMaxRequests, cb.maxRequests)
	assert.Equal(t, defaultTimeout, cb.timeout)
	assert.Equal(t, "defaults", cb.Name())
}
