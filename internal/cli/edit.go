package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/loader"
	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/session"
	"github.com/roach88/blueprint/internal/validate"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Out    string
	DryRun bool
}

// EditResult is the JSON payload of the edit command.
type EditResult struct {
	Op       string                      `json:"op"`
	Path     string                      `json:"path,omitempty"`
	Hash     string                      `json:"hash"`
	DryRun   bool                        `json:"dryRun,omitempty"`
	Document *ir.Document                `json:"document,omitempty"`
	Warnings []validate.ReferenceWarning `json:"warnings"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <doc> <op> [key=value...]",
		Short: "Apply one mutation to a document",
		Long: fmt.Sprintf(`Apply one mutation to a document and write the result.

Arguments are key=value pairs such as min=1 or response_schema=User.
Repeated keys build lists (tags=a tags=b).
The document is rewritten in place unless --out or --dry-run is given.

Ops:
  %s

Exit codes:
  0 - Edit applied
  1 - Edit rejected with violations (nothing written)
  2 - Command error (unknown op, bad arguments, index or model not found)

Examples:
  blueprint edit api.yaml add-endpoint
  blueprint edit api.yaml update-endpoint index=0 method=POST path=/api/users
  blueprint edit api.yaml add-field model=User name=email type=string required=true
  blueprint edit api.yaml rename-model from=User to=Account --dry-run`, strings.Join(mutate.Names(), "\n  ")),
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd, args[0], args[1], args[2:])
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the edited document here instead of in place")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the edited document without writing it")

	return cmd
}

func runEdit(opts *EditOptions, cmd *cobra.Command, path, name string, pairs []string) error {
	f := opts.formatter(cmd)

	values, err := parsePairs(pairs)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid arguments", err)
	}
	op, err := mutate.Decode(name, values)
	if err != nil {
		return editFailure(f, err)
	}

	doc, err := loadDocument(f, path)
	if err != nil {
		return err
	}

	sess, err := session.New(cmd.Context(), doc, session.WithLogger(opts.logger()))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to start session", err)
	}
	res, err := sess.Apply(cmd.Context(), op)
	if err != nil {
		return editFailure(f, err)
	}

	result := EditResult{
		Op:       op.Name(),
		Hash:     res.Entry.Hash,
		DryRun:   opts.DryRun,
		Warnings: res.Warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []validate.ReferenceWarning{}
	}

	if opts.DryRun {
		if f.JSON() {
			result.Document = &res.Document
			return f.Success(result)
		}
		return printDocument(f, path, res.Document)
	}

	dest := path
	if opts.Out != "" {
		dest = opts.Out
	}
	if err := loader.WriteFile(dest, res.Document); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write document", err)
	}
	result.Path = dest

	if f.JSON() {
		return f.Success(result)
	}
	f.VerboseLog("hash: %s", res.Entry.Hash)
	if err := f.Success(fmt.Sprintf("✓ %s applied to %s", op.Name(), dest)); err != nil {
		return err
	}
	f.Warnings(res.Warnings)
	return nil
}

// parsePairs turns key=value arguments into form values. Repeated keys
// accumulate in order.
func parsePairs(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", p)
		}
		values.Add(key, value)
	}
	return values, nil
}

// printDocument writes doc to f in the format implied by path.
func printDocument(f *OutputFormatter, path string, doc ir.Document) error {
	format, err := loader.FormatOf(path)
	if err != nil {
		format = loader.FormatYAML
	}
	data, err := loader.Encode(doc, format)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode document", err)
	}
	_, err = f.Writer.Write(data)
	return err
}
