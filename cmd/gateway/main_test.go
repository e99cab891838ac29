package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestServeCommand_RefusesInvalidLimiterConfig(t *testing.T) {
	t.Setenv("RATE_LIMITER_WINDOW_MS", "0")
	t.Setenv("ASSISTANT_ENABLED", "false")

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--env-file", ""})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limiter.window_ms must be > 0")
}
