package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmenu/pkg/config"
)

func TestCommandLineFlagsOnlyChanged(t *testing.T) {
	cmd := rootCmd
	t.Cleanup(func() {
		logLevel, dataDir, noColor = "", "", false
		_ = cmd.Flags().Set(config.FlagLogLevel, "")
		_ = cmd.Flags().Set(config.FlagDataDir, "")
		_ = cmd.Flags().Set(config.FlagNoColor, "false")
	})

	require.NoError(t, cmd.ParseFlags([]string{"--data-dir", "/tmp/out", "--no-color"}))

	flags := commandLineFlags(cmd)
	assert.Equal(t, "/tmp/out", flags[config.FlagDataDir])
	assert.Equal(t, true, flags[config.FlagNoColor])
	assert.NotContains(t, flags, config.FlagLogLevel)
}

func TestRunExitsAtEndOfInput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Output.NoColor = true
	cfg.Logging.Level = "disabled"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, strings.NewReader(""), &out))
	assert.True(t, strings.HasPrefix(out.String(), "Welcome to the Instagram Downloader Menu!\n"))
}
