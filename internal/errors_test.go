package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrNotFound("not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("double-wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.ErrBadRequest("bad request")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(errors.New("something went wrong")))
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("decode failed")
	httpErr := internal.ErrBadRequest("malformed body",
		internal.WithErrorCode("BadRequest"),
		internal.WithError(cause),
	)

	got := internal.AsHTTPError(fmt.Errorf("handler: %w", httpErr))
	require.NotNil(t, got)
	require.Equal(t, http.StatusBadRequest, got.StatusCode())
	require.Equal(t, "Bad Request", got.StatusText())
	require.Equal(t, "malformed body", got.Error())
	require.Equal(t, "BadRequest", got.ErrorCode)
	require.ErrorIs(t, got, cause)

	require.Nil(t, internal.AsHTTPError(errors.New("plain error")))
}
