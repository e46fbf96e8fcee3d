package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiErrorNilOnly(t *testing.T) {
	require.NoError(t, MultiError(nil, nil))
}

func TestMultiErrorSingleUnwrapped(t *testing.T) {
	err := errors.New("boom")
	require.Equal(t, err, MultiError(nil, err))
}

func TestMultiErrorAggregatesAndFlattens(t *testing.T) {
	e1 := errors.New("one")
	e2 := errors.New("two")
	e3 := errors.New("three")

	combined := MultiError(e1, e2)
	all := MultiError(combined, e3)

	merr, ok := all.(interface{ Errors() []error })
	require.True(t, ok)
	require.Equal(t, []error{e1, e2, e3}, merr.Errors())
}
