package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/blueprint/internal/harness"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/loader"
	"github.com/roach88/blueprint/internal/session"
	"github.com/roach88/blueprint/internal/store"
	"github.com/roach88/blueprint/internal/validate"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Journal string
	Out     string
}

// Script is an ops file: steps applied in order in one session.
type Script struct {
	Steps []harness.Step `yaml:"steps"`
}

// ApplyResult is the JSON payload of the apply command.
type ApplyResult struct {
	SessionID string                      `json:"sessionId"`
	Steps     []harness.StepTrace         `json:"steps"`
	Path      string                      `json:"path"`
	Journal   string                      `json:"journal,omitempty"`
	Hash      string                      `json:"hash"`
	Warnings  []validate.ReferenceWarning `json:"warnings"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <doc> <ops.yaml>",
		Short: "Apply a script of edits in one session",
		Long: `Apply a YAML script of edits and restores to a document in one session.

Step args use the same keys as the journal (responseSchema, not
response_schema). Script format:
  steps:
    - op: add-model
    - op: add-field
      args: {model: NewModel, name: id, type: string, required: true}
    - restore: 1

Steps run in order; the first rejected step stops the run and nothing is
written. With --journal (or journal.path in the config file) every committed
step is appended to a SQLite audit journal that history and replay can read.
Steps applied before a rejection stay in the journal.

Exit codes:
  0 - All steps applied
  1 - A step was rejected with violations
  2 - Command error (unreadable script, bad op, index or model not found)

Examples:
  blueprint apply api.yaml ops.yaml
  blueprint apply api.yaml ops.yaml --journal audit.db --out api.next.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite audit journal to append to (default journal.path from config)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the final document here instead of in place")

	return cmd
}

func runApply(opts *ApplyOptions, cmd *cobra.Command, path, scriptPath string) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	log := opts.logger()

	script, err := LoadScript(scriptPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load script", err)
	}

	doc, err := loadDocument(f, path)
	if err != nil {
		return err
	}

	sessOpts := []session.Option{session.WithLogger(log)}
	journal := opts.Journal
	if journal == "" {
		journal = opts.config().Journal.Path
	}
	if journal != "" {
		st, err := store.Open(journal)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer st.Close()
		sessOpts = append(sessOpts, session.WithJournal(st))
	}

	sess, err := session.New(ctx, doc, sessOpts...)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "failed to start session", err)
	}
	log.Infow("applying script", "session", sess.ID(), "steps", len(script.Steps), "journal", journal)

	traces := make([]harness.StepTrace, 0, len(script.Steps))
	for i, step := range script.Steps {
		trace, err := harness.ApplyStep(ctx, sess, step)
		trace.Step = i
		if err != nil {
			f.VerboseLog("steps[%d] %s: %v", i, step.Label(), err)
			return editFailure(f, fmt.Errorf("steps[%d]: %w", i, err))
		}
		traces = append(traces, trace)
		if !f.JSON() {
			fmt.Fprintf(f.Writer, "✓ steps[%d] %s (history %d)\n", i, step.Label(), trace.Seq)
		}
	}

	final := sess.Document()
	dest := path
	if opts.Out != "" {
		dest = opts.Out
	}
	if err := loader.WriteFile(dest, final); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write document", err)
	}

	warnings := sess.Warnings()
	if warnings == nil {
		warnings = []validate.ReferenceWarning{}
	}

	if f.JSON() {
		return f.Success(ApplyResult{
			SessionID: sess.ID(),
			Steps:     traces,
			Path:      dest,
			Journal:   journal,
			Hash:      ir.MustDocumentHash(final),
			Warnings:  warnings,
		})
	}

	msg := fmt.Sprintf("✓ Applied %d steps to %s", len(traces), dest)
	if journal != "" {
		msg += fmt.Sprintf("\n  session %s journaled to %s", sess.ID(), journal)
	}
	if err := f.Success(msg); err != nil {
		return err
	}
	f.Warnings(warnings)
	return nil
}

// LoadScript reads an ops script. Unknown keys are rejected.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, step := range script.Steps {
		if (step.Op == "") == (step.Restore == nil) {
			return nil, fmt.Errorf("%s: steps[%d]: exactly one of op or restore is required", path, i)
		}
	}
	return &script, nil
}
