package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(CodeUpstreamUnreachable, "cannot reach upstream", cause)

	require.True(t, IsCode(err, CodeUpstreamUnreachable))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "cannot reach upstream: dial tcp: refused", err.Error())
	require.Equal(t, "cannot reach upstream", MessageOf(err))
}

func TestCodeOfWrappedChain(t *testing.T) {
	inner := Wrap(CodeTimeout, "upstream timed out", nil)
	outer := fmt.Errorf("forecast: %w", inner)

	require.Equal(t, CodeTimeout, CodeOf(outer))
	require.False(t, IsCode(outer, CodeNoData))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.Equal(t, "plain", MessageOf(errors.New("plain")))
}
