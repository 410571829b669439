package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteReturnsCommandError(t *testing.T) {
	rootCmd.SetArgs([]string{"toggle"})
	defer rootCmd.SetArgs(nil)

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arg")
}

func TestRootSilencesCobraErrorOutput(t *testing.T) {
	// Failures are rendered once by Execute; cobra must not print them too.
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}
