package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blueprint/internal/validate"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitFailure, "something failed")
	assert.Equal(t, "something failed", err.Error())
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cause := errors.New("disk full")
	wrapped := WrapExitError(ExitCommandError, "failed to write", cause)
	assert.Equal(t, "failed to write: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestGetExitCodeDefaultsToFailure(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatterSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"endpoints": 2}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"endpoints": float64(2)}, resp.Data)
}

func TestOutputFormatterErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeNotFound, "document not found", "api.yaml"))
	assert.Contains(t, buf.String(), "Error [E002]: document not found")
	assert.Contains(t, buf.String(), "Details: api.yaml")
}

func TestOutputFormatterFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write", errors.New("read-only"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWriteFailed, resp.Error.Code)
	assert.Equal(t, "failed to write: read-only", resp.Error.Message)
}

func TestOutputFormatterViolations(t *testing.T) {
	ve := &validate.ValidationError{
		Object: "endpoint",
		Violations: []validate.Violation{
			{Field: "method", Message: "must be one of GET POST PUT DELETE PATCH", Code: validate.ErrNotInEnum},
			{Field: "parameters[0].type", Message: "is required", Code: validate.ErrRequired},
		},
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		err := f.Violations(ve)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, buf.String(), "✗ Invalid endpoint")
		assert.Contains(t, buf.String(), "[E202] method")
		assert.Contains(t, buf.String(), "[E201] parameters[0].type")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		err := f.Violations(ve)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string                   `json:"status"`
			Data   validate.ValidationError `json:"data"`
			Error  CLIError                 `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, validate.ErrNotInEnum, resp.Error.Code)
		assert.Len(t, resp.Data.Violations, 2)
	})
}

func TestOutputFormatterWarningsTextOnly(t *testing.T) {
	warnings := []validate.ReferenceWarning{{
		Kind:    validate.WarnResponseSchema,
		Path:    "endpoints[0].responseSchema",
		Target:  "Ghost",
		Message: `model "Ghost" does not exist`,
	}}

	buf := &bytes.Buffer{}
	(&OutputFormatter{Format: "text", Writer: buf}).Warnings(warnings)
	assert.Contains(t, buf.String(), "⚠ endpoints[0].responseSchema")

	buf.Reset()
	(&OutputFormatter{Format: "json", Writer: buf}).Warnings(warnings)
	assert.Empty(t, buf.String())
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("hash: %s", "abc")
	assert.Empty(t, out.String())
	assert.Equal(t, "hash: abc\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "hash: abc\n", errOut.String())
}
