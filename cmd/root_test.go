package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"serve", "render", "status"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "broadstreet", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRenderCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"out", "basemap", "deaths", "pumps", "areas"} {
		flag := renderCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "render should have --%s flag", flagName)
	}

	flag := renderCmd.Flags().Lookup("deaths")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}
