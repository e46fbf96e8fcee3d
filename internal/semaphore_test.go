package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSemaphoreWaitRelease(t *testing.T) {
	sem := NewSemaphore(1)
	ctx := context.Background()

	require.NoError(t, sem.Wait(ctx))

	ctx2, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	require.Error(t, sem.Wait(ctx2))

	sem.Release()
	require.NoError(t, sem.Wait(ctx))
}
