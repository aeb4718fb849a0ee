package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerIsNeverNil(t *testing.T) {
	require.NotNil(t, Logger())
	require.NotNil(t, WithModule("test"))
}

func TestInitAcceptsKnownAndUnknownLevels(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.NoError(t, Init("not-a-level")) // falls back to info
	require.NotNil(t, Logger())
}
