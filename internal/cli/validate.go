package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult is the JSON payload of a valid document.
type ValidateResult struct {
	Valid     bool                        `json:"valid"`
	Endpoints int                         `json:"endpoints"`
	Models    int                         `json:"models"`
	Hash      string                      `json:"hash"`
	Warnings  []validate.ReferenceWarning `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <doc>",
		Short: "Validate a document",
		Long: `Validate an API design document without modifying it.

Every endpoint, parameter, model, field and relationship is checked and all
violations are reported. Dangling references (a responseSchema or relationship
naming a missing model or field) and duplicate field names are warnings.

Exit codes:
  0 - Document is valid (warnings may be printed)
  1 - Document has violations
  2 - Command error (file not found, unreadable)

Examples:
  blueprint validate api.yaml
  blueprint validate api.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args[0])
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	doc, err := loadDocument(f, path)
	if err != nil {
		return err
	}
	warnings := validate.References(doc)
	if warnings == nil {
		warnings = []validate.ReferenceWarning{}
	}

	if f.JSON() {
		return f.Success(ValidateResult{
			Valid:     true,
			Endpoints: len(doc.Endpoints),
			Models:    doc.Schema.Len(),
			Hash:      ir.MustDocumentHash(doc),
			Warnings:  warnings,
		})
	}

	f.VerboseLog("hash: %s", ir.MustDocumentHash(doc))
	if err := f.Success(fmt.Sprintf("✓ %s is valid (%d endpoints, %d models)", path, len(doc.Endpoints), doc.Schema.Len())); err != nil {
		return err
	}
	f.Warnings(warnings)
	return nil
}
