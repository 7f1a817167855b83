package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "server", "token", "session", "log-level"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["status"])
	assert.True(t, names["serve-fake"])
}

func TestServeFakeFlagDefaults(t *testing.T) {
	listen := serveFakeCmd.Flags().Lookup("listen")
	require.NotNil(t, listen)
	assert.Equal(t, ":8420", listen.DefValue)
}
