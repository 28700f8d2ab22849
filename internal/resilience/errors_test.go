package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"explicit", NewTransientError(errors.New("rate limited"), 429), true},
		{"wrapped explicit", eris.Wrap(NewTransientError(errors.New("x"), 503), "sheets: update"), true},
		{"fmt wrapped", fmt.Errorf("outer: %w", NewTransientError(errors.New("x"), 500)), true},
		{"conn reset", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"net timeout", fmt.Errorf("read: %w", timeoutErr{}), true},
		{"pattern", errors.New("read tcp: i/o timeout"), true},
		{"pattern case", errors.New("Connection Reset By Peer"), true},
		{"unexpected eof", errors.New("reddit: read body: unexpected EOF"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 501} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestStatusError(t *testing.T) {
	err := StatusError("sheets", 429, []byte(`{"error":"quota"}`))
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "sheets: unexpected status 429")

	var te *TransientError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 429, te.StatusCode)

	err = StatusError("reddit", 403, []byte("forbidden"))
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "403: forbidden")
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'x'
	}
	err := StatusError("sheets", 500, body)
	assert.Less(t, len(err.Error()), 600)
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 502)
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "inner", te.Error())
}
