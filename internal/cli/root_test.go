package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// instantConfig writes a config file with every assistant delay set to zero.
func instantConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	content := `assist:
  seed: 7
  delays:
    suggestions: 0s
    parameters: 0s
    fields: 0s
    prompt: 0s
    performance: 0s
    conversion: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// decodeData unmarshals the data of a successful JSON response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"new", "validate", "project", "edit", "apply", "history", "replay", "suggest", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestRootCommandInvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	_, err := execute(t, "new", path, "--format", "xml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.NoFileExists(t, path)
}

func TestRootCommandMissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	_, err := execute(t, "new", path, "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSetupLoadsConfig(t *testing.T) {
	opts := &RootOptions{Format: "json", Verbose: true, ConfigPath: instantConfig(t)}
	require.NoError(t, opts.setup())

	require.NotNil(t, opts.Config)
	require.NotNil(t, opts.Logger)
	assert.True(t, opts.Config.Log.Verbose, "--verbose turns on verbose logging")
	assert.Equal(t, uint64(7), opts.Config.Assist.Seed)
	assert.Zero(t, opts.Config.Assist.Delays.Fields)
}

func TestRootOptionsDefaultsWithoutSetup(t *testing.T) {
	opts := &RootOptions{}
	assert.NotNil(t, opts.config())
	assert.NotNil(t, opts.logger())
	assert.Equal(t, "api", opts.config().Project.Package)
}
