package bson

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewObjectID(t *testing.T) {
	NewObjectID()
}

func TestObjectIDString(t *testing.T) {
	id := NewObjectID()
	require.Contains(t, id.String(), id.Hex())
}

func TestObjectIDFromHexRoundTrip(t *testing.T) {
	before := NewObjectID()
	after, err := ObjectIDFromHex(before.Hex())
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestObjectIDFromHexInvalid(t *testing.T) {
	_, err := ObjectIDFromHex("not a valid hex string, far too long and garbage!!")
	require.Error(t, err)
}

func TestObjectIDFromHexWrongLength(t *testing.T) {
	_, err := ObjectIDFromHex("deadbeef")
	require.Equal(t, ErrInvalidHex, err)
}

func TestObjectIDTimestamp(t *testing.T) {
	now := time.Now()
	id := NewObjectIDFromTimestamp(now)
	require.Equal(t, now.Unix(), id.Timestamp().Unix())
}

func TestObjectIDIsZero(t *testing.T) {
	var zero ObjectID
	require.True(t, zero.IsZero())
	require.False(t, NewObjectID().IsZero())
}

// TestObjectIDConcurrentGenerationIsUnique is the S6 testable property
// from the spec: a large number of concurrently generated ObjectIDs are
// pairwise distinct and decode to a plausible timestamp.
func TestObjectIDConcurrentGenerationIsUnique(t *testing.T) {
	const n = 100000
	const workers = 32

	ids := make([]ObjectID, n)
	var wg sync.WaitGroup
	start := time.Now().Add(-time.Second)

	perWorker := n / workers
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids[w*perWorker+i] = NewObjectID()
			}
		}()
	}
	wg.Wait()

	seen := make(map[ObjectID]bool, n)
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		require.False(t, seen[id], "duplicate ObjectID generated: %s", id)
		seen[id] = true
		require.False(t, id.Timestamp().Before(start))
	}
}
