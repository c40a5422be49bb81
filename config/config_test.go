package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takoeight0821/rustscript/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rustscript.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultEntryPoint, cfg.EntryPoint)
	assert.Equal(t, config.DefaultIndent, cfg.Indent)
	assert.Equal(t, config.DefaultOutput, cfg.Output)
	assert.False(t, cfg.Strict)
	assert.Empty(t, cfg.File)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "entry_point: start\nindent: \"  \"\nstrict: true\noutput: out/app.js\n")

	cfg, err := config.LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "start", cfg.EntryPoint)
	assert.Equal(t, "  ", cfg.Indent)
	assert.Equal(t, "out/app.js", cfg.Output)
	assert.True(t, cfg.Strict)

	t.Setenv("RUSTSCRIPT_ENTRY_POINT", "boot")
	t.Setenv("RUSTSCRIPT_STRICT", "false")

	cfg, err = config.LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "boot", cfg.EntryPoint)
	assert.False(t, cfg.Strict)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--entry", "run", "--log-level", "debug"}))

	cfg, err = config.LoadFrom(dir, "", fs)
	require.NoError(t, err)
	assert.Equal(t, "run", cfg.EntryPoint)
	assert.Equal(t, "  ", cfg.Indent, "unset flags keep lower-priority values")

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestVerboseForcesDebug(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-v", "--log-level", "error"}))

	cfg, err := config.LoadFrom(t.TempDir(), "", fs)
	require.NoError(t, err)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.LoadFrom(dir, filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)

	writeConfig(t, dir, "log_level: loud\n")
	_, err = config.LoadFrom(dir, "", nil)
	assert.ErrorContains(t, err, "invalid log_level")
}
