package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainSaslClient_Start(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	c := &plainSaslClient{Username: "user", Password: "pencil"}

	mechanism, payload, err := c.Start()

	require.NoError(err)
	require.Equal(plain, mechanism)
	require.Equal([]byte("\x00user\x00pencil"), payload)
	require.True(c.Completed())
}

func TestPlainSaslClient_NextRejectsChallenge(t *testing.T) {
	t.Parallel()

	c := &plainSaslClient{Username: "user", Password: "pencil"}

	_, err := c.Next([]byte("unexpected"))

	require.Error(t, err)
}

func TestNewPlainAuthenticator(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	authenticator, err := newPlainAuthenticator("admin", "user", "pencil", nil)
	require.NoError(err)

	plainAuth, ok := authenticator.(*PlainAuthenticator)
	require.True(ok)
	require.Equal("admin", plainAuth.DB)
	require.Equal("user", plainAuth.Username)
	require.Equal("pencil", plainAuth.Password)
}
