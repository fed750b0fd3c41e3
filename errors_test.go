package cassowary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternalError(t *testing.T) {
	assert := require.New(t)

	err := internalError("row bookkeeping mismatch")
	assert.ErrorIs(err, ErrInternal)
	assert.EqualError(err, "internal solver error: row bookkeeping mismatch")

	var ie InternalError
	assert.True(errors.As(err, &ie))
	assert.Equal("row bookkeeping mismatch", ie.Msg)

	// recoverable sentinels are not internal errors
	assert.False(errors.Is(ErrUnsatisfiableConstraint, ErrInternal))
}
