package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/blueprint/internal/config"
	"github.com/roach88/blueprint/internal/history"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/loader"
	"github.com/roach88/blueprint/internal/logging"
	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/validate"
)

// RootOptions holds global flags and the state PersistentPreRunE builds.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *zap.SugaredLogger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the blueprint CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "blueprint",
		Short:   "blueprint - API design documents",
		Long:    "Edit, validate and project API design documents: endpoints, data models and their history.",
		Version: ir.EngineVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./blueprint.yaml if present)")

	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewSuggestCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags, loads configuration and builds the logger.
func (o *RootOptions) setup() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		cfg.Log.Verbose = true
	}
	o.Config = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}
	o.Logger = logger.Sugar()
	return nil
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns the configured logger, or a no-op one when setup has not run.
func (o *RootOptions) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// config returns the loaded configuration, or defaults when setup has not run.
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// loadDocument loads path, reporting failures through f.
func loadDocument(f *OutputFormatter, path string) (ir.Document, error) {
	doc, err := loader.Load(path)
	if err == nil {
		return doc, nil
	}
	if ve, ok := validate.AsValidationError(err); ok {
		return ir.Document{}, f.Violations(ve)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ir.Document{}, f.Fail(ExitCommandError, ErrCodeNotFound, "document not found", err)
	}
	return ir.Document{}, f.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load document", err)
}

// editFailure maps a rejected op to output and an exit code: violations
// are ExitFailure, contract and decode errors are command errors.
func editFailure(f *OutputFormatter, err error) error {
	if ve, ok := validate.AsValidationError(err); ok {
		return f.Violations(ve)
	}
	var decodeErr *mutate.DecodeError
	switch {
	case mutate.IsContractError(err), errors.Is(err, history.ErrOutOfRange):
		return f.Fail(ExitCommandError, ErrCodeContract, "edit rejected", err)
	case errors.As(err, &decodeErr), errors.Is(err, mutate.ErrUnknownOp):
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid op", err)
	default:
		return f.Fail(ExitCommandError, ErrCodeGeneric, "edit failed", err)
	}
}
