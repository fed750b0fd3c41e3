package cassowary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.NoError(t, Version.Validate())
	require.NotEmpty(t, Version.String())
}
