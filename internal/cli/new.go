package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/loader"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Template string
	Force    bool
}

// NewResult is the JSON payload of the new command.
type NewResult struct {
	Path      string `json:"path"`
	Template  string `json:"template"`
	Endpoints int    `json:"endpoints"`
	Models    int    `json:"models"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a document from a template",
		Long: `Create a new API design document from an embedded template.

The file format follows the extension: .json, .yaml/.yml or .cue.
Templates: blank (empty document) and ecommerce (products, orders, cart).

Exit codes:
  0 - Document written
  2 - Command error (unknown template, file exists, write failed)

Examples:
  blueprint new api.yaml
  blueprint new shop.json --template ecommerce
  blueprint new api.yaml --force`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", loader.DefaultTemplate, "seed template (blank|ecommerce)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")

	return cmd
}

func runNew(opts *NewOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	doc, err := loader.Template(opts.Template)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "unknown template", err)
	}

	if !opts.Force {
		_, err := os.Stat(path)
		if err == nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to check destination", err)
		}
	}

	if err := loader.WriteFile(path, doc); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write document", err)
	}
	opts.logger().Debugw("document created", "path", path, "template", opts.Template)

	if f.JSON() {
		return f.Success(NewResult{
			Path:      path,
			Template:  opts.Template,
			Endpoints: len(doc.Endpoints),
			Models:    doc.Schema.Len(),
		})
	}
	return f.Success(fmt.Sprintf("✓ Created %s from template %q (%d endpoints, %d models)",
		path, opts.Template, len(doc.Endpoints), doc.Schema.Len()))
}
