package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/project"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	Target string
	Out    string
}

// ProjectResult is the JSON payload of the project command.
type ProjectResult struct {
	Target string `json:"target"`
	Output string `json:"output,omitempty"`
	Path   string `json:"path,omitempty"`
}

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project <doc>",
		Short: "Render a document as client, GraphQL, IDL or zod source",
		Long: `Render a document with one of the projection generators.

Targets:
  client  - TypeScript client stub, one method per endpoint
  graphql - GraphQL SDL with one type per model and a Query type
  idl     - proto3-style IDL with messages and a service
  zod     - zod schemas for endpoint parameters

The same document always renders to the same bytes. IDL package and service
names come from the project section of the config file.

Exit codes:
  0 - Projection rendered
  1 - Document has violations
  2 - Command error (unknown target, file not found, write failed)

Examples:
  blueprint project api.yaml --target graphql
  blueprint project api.yaml --target idl --out api.proto`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "projection target (client|graphql|idl|zod) (required)")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write output to file instead of stdout")

	return cmd
}

func runProject(opts *ProjectOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	target, err := project.ParseTarget(opts.Target)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid target", err)
	}

	doc, err := loadDocument(f, path)
	if err != nil {
		return err
	}

	out, err := project.Generate(doc, target, opts.config().Project.Options()...)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "projection failed", err)
	}
	return writeProjection(f, target, out, opts.Out)
}

// writeProjection prints out or writes it to dest.
func writeProjection(f *OutputFormatter, target project.Target, out, dest string) error {
	if dest != "" {
		if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write projection", err)
		}
		if f.JSON() {
			return f.Success(ProjectResult{Target: string(target), Path: dest})
		}
		return f.Success(fmt.Sprintf("✓ Wrote %s projection to %s", target, dest))
	}

	if f.JSON() {
		return f.Success(ProjectResult{Target: string(target), Output: out})
	}
	_, err := fmt.Fprint(f.Writer, out)
	return err
}
