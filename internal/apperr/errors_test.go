package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Authentication("bad token"), http.StatusUnauthorized},
		{Authorization("nope"), http.StatusForbidden},
		{NotFound("task"), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{InvalidTransition("TODO", "DONE"), http.StatusBadRequest},
		{InvalidState("task not in DOING"), http.StatusBadRequest},
		{AlreadyDecided("r1"), http.StatusConflict},
		{Conflict("stale"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("client")))
	assert.Equal(t, KindInternal, KindOf(errors.New("foreign")))

	wrapped := fmt.Errorf("while deciding: %w", Conflict("stale"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("task")
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Kind: KindConflict})

	// A sentinel with a message must match the message too.
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound, Message: "task not found"})
	assert.NotErrorIs(t, err, &Error{Kind: KindNotFound, Message: "client not found"})
}

func TestErrorString(t *testing.T) {
	err := InvalidTransition("TODO", "DONE")
	require.EqualError(t, err, "INVALID_TRANSITION: invalid transition from TODO to DONE")

	withCause := Internal(errors.New("boom"))
	assert.Contains(t, withCause.Error(), "boom")
}
