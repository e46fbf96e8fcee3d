package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRolledUpErrorMessage(t *testing.T) {
	root := errors.New("dial tcp: connection refused")
	mid := WrapError(root, "failed to connect")
	top := WrapErrorf(mid, "server %s unavailable", "a.example.com:27017")

	require.Equal(t, "server a.example.com:27017 unavailable: failed to connect: dial tcp: connection refused", top.Error())
}

func TestDriverErrorIsMatchesKind(t *testing.T) {
	err := NewError(KindNoPrimary, "no primary available")
	require.True(t, errors.Is(err, NewError(KindNoPrimary, "")))
	require.False(t, errors.Is(err, NewError(KindNoSuitableServer, "")))
}

func TestWrapAsPreservesCause(t *testing.T) {
	root := errors.New("socket closed")
	err := WrapAsf(KindConnectionLost, root, "read failed")

	require.Equal(t, root, errors.Unwrap(err.Inner()))
	require.Contains(t, err.Error(), "socket closed")
}
