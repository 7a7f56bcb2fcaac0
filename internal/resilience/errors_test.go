package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("invalid request")))

	assert.True(t, IsTransient(NewTransientError(errors.New("overloaded"), 529)))
	// Wrapping must not hide the marker type.
	assert.True(t, IsTransient(eris.Wrap(NewTransientError(errors.New("boom"), 503), "model call")))
	assert.True(t, IsTransient(fmt.Errorf("fetch: %w", syscall.ECONNRESET)))

	// Provider errors often arrive as bare strings.
	assert.True(t, IsTransient(errors.New("API rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("read tcp: i/o timeout")))
	assert.False(t, IsTransient(errors.New("401 unauthorized")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "%d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), "%d", code)
	}
}
