package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByType(t *testing.T) {
	err := New(ErrorTypeNotFound, http.StatusNotFound, "user %q not found", "ghost")

	assert.True(t, stderrors.Is(err, ErrProfileNotFound))
	assert.False(t, stderrors.Is(err, ErrLoginRequired))

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrProfileNotFound))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "auth error: nope", New(ErrorTypeAuth, 0, "nope").Error())
	assert.Equal(t, "not_found error (code 404): gone", New(ErrorTypeNotFound, 404, "gone").Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrorTypeNetwork, io.ErrUnexpectedEOF, "reading %s", "body")

	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "network error: reading body: unexpected EOF", err.Error())
}

func TestIsHandled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", ErrProfileNotFound, true},
		{"login required", fmt.Errorf("x: %w", ErrLoginRequired), true},
		{"bad credentials", ErrBadCredentials, false},
		{"plain error", io.EOF, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHandled(tt.err))
		})
	}
}

func TestFromStatusCode(t *testing.T) {
	assert.Equal(t, ErrorTypeNetwork, FromStatusCode(0))
	assert.Equal(t, ErrorTypeLoginRequired, FromStatusCode(401))
	assert.Equal(t, ErrorTypeLoginRequired, FromStatusCode(403))
	assert.Equal(t, ErrorTypeNotFound, FromStatusCode(404))
	assert.Equal(t, ErrorTypeServerError, FromStatusCode(503))
	assert.Equal(t, ErrorTypeUnknown, FromStatusCode(418))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "unexpected EOF", UserMessage(io.ErrUnexpectedEOF))
	assert.Equal(t, "Please wait", UserMessage(New(ErrorTypeAuth, 400, "Please wait")))
	assert.Equal(t, "gone", UserMessage(fmt.Errorf("fetch: %w", New(ErrorTypeServerError, 500, "gone"))))
}
