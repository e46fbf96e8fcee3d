package server_test

import (
	"testing"

	. "github.com/10gen/mongo-go-driver/server"
	"github.com/stretchr/testify/require"
)

func TestNewTagSet(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	ts := NewTagSet("a", "1", "b", "2")
	require.Equal(TagSet{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}, ts)
}

func TestNewTagSet_OddArgsPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { NewTagSet("a") })
}

func TestTagSet_Contains(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	ts := NewTagSet("dc", "ny", "rack", "1")

	require.True(ts.Contains("dc", "ny"))
	require.False(ts.Contains("dc", "sf"))
}

func TestTagSet_ContainsAll(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	ts := NewTagSet("dc", "ny", "rack", "1")

	require.True(ts.ContainsAll([]Tag{{Name: "dc", Value: "ny"}}))
	require.True(ts.ContainsAll([]Tag{{Name: "dc", Value: "ny"}, {Name: "rack", Value: "1"}}))
	require.False(ts.ContainsAll([]Tag{{Name: "dc", Value: "sf"}}))
	require.True(ts.ContainsAll(nil))
}
