package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := New("PICKUP_NOT_FOUND", "Pickup request not found", http.StatusNotFound)
	require.Equal(t, "Pickup request not found", err.Error())

	cause := errors.New("record not found")
	withCause := err.WithInternal(cause)
	require.Contains(t, withCause.Error(), "record not found")
	require.ErrorIs(t, withCause, cause)

	// The original sentinel must stay untouched.
	require.Nil(t, err.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	app := FromError(ErrForbidden)
	require.Equal(t, ErrForbidden, app)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.Equal(t, http.StatusInternalServerError, generic.StatusCode)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	wrapped := Wrap(cause, "could not reach mail server")
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
}
