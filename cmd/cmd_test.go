// File: cmd/cmd_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["login"], "login subcommand should be registered")
	assert.True(t, names["analyze"], "analyze subcommand should be registered")
	assert.True(t, names["cache"], "cache subcommand should be registered")
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := newAnalyzeCmd()

	for _, name := range []string{"include-html", "screenshot", "network", "requirements", "fail-fast", "username", "password"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "analyze should define --%s", name)
	}

	// Analyze refuses to run without at least one URL.
	require.Error(t, cmd.Args(cmd, []string{}))
	require.NoError(t, cmd.Args(cmd, []string{"https://manabo.cnc.chukyo-u.ac.jp/top"}))
}

func TestLoginCommandFlags(t *testing.T) {
	cmd := newLoginCmd()
	assert.NotNil(t, cmd.Flags().Lookup("username"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
	require.Error(t, cmd.Args(cmd, []string{"unexpected"}))
}

func TestCacheCommandSubcommands(t *testing.T) {
	cmd := newCacheCmd()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["status"])
	assert.True(t, names["clear"])
}
