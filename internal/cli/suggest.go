package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/assist"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/loader"
	"github.com/roach88/blueprint/internal/project"
	"github.com/roach88/blueprint/internal/session"
)

// SuggestOptions holds flags for the suggest command.
type SuggestOptions struct {
	*RootOptions
	Feature  string
	Endpoint int
	Model    string
	Prompt   string
	Target   string
	Out      string
}

// SuggestResult is the JSON payload of the suggest command. Only the part
// matching the feature is set.
type SuggestResult struct {
	Feature     assist.Feature             `json:"feature"`
	Suggestions []string                   `json:"suggestions,omitempty"`
	Simulation  []assist.PerformanceResult `json:"simulation,omitempty"`
	Output      string                     `json:"output,omitempty"`
	Document    *ir.Document               `json:"document,omitempty"`
	Path        string                     `json:"path,omitempty"`
}

var suggestFeatures = []assist.Feature{
	assist.FeatureSuggestions,
	assist.FeatureParameters,
	assist.FeatureFields,
	assist.FeaturePrompt,
	assist.FeaturePerformance,
	assist.FeatureConversion,
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuggestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suggest <doc>",
		Short: "Run a simulated assistant feature",
		Long: `Run one simulated assistant feature against a document.

The assistant is a deterministic mock that answers after the delays set in
the assist section of the config file.

Features:
  suggestions - design suggestions for the document
  parameters  - pagination parameters for the endpoint at --endpoint
  fields      - standard fields for the model named by --model
  prompt      - one field for --model built from --prompt
  performance - simulated load test of every endpoint
  conversion  - delayed projection for --target

Features that edit the document print the edited document, or write it to
--out. Nothing is written in place.

Exit codes:
  0 - Feature completed
  1 - Document or suggested edit has violations
  2 - Command error (bad feature, index or model not found, cancelled)

Examples:
  blueprint suggest api.yaml --feature suggestions
  blueprint suggest api.yaml --feature fields --model User --out api.yaml
  blueprint suggest api.yaml --feature prompt --model User --prompt "last login"
  blueprint suggest api.yaml --feature performance --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Feature, "feature", string(assist.FeatureSuggestions), "assistant feature to run")
	cmd.Flags().IntVar(&opts.Endpoint, "endpoint", 0, "endpoint index for the parameters feature")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model name for the fields and prompt features")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "field description for the prompt feature")
	cmd.Flags().StringVar(&opts.Target, "target", string(project.TargetGraphQL), "projection target for the conversion feature")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the edited document or conversion output here")

	return cmd
}

func runSuggest(opts *SuggestOptions, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	cfg := opts.config()
	log := opts.logger()

	feature := assist.Feature(strings.ToLower(opts.Feature))
	if !slices.Contains(suggestFeatures, feature) {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("unknown feature %q", opts.Feature), nil)
	}
	if (feature == assist.FeatureFields || feature == assist.FeaturePrompt) && opts.Model == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("--model is required for %s", feature), nil)
	}
	var target project.Target
	if feature == assist.FeatureConversion {
		t, err := project.ParseTarget(opts.Target)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid target", err)
		}
		target = t
	}

	doc, err := loadDocument(f, path)
	if err != nil {
		return err
	}

	mockOpts := []assist.MockOption{assist.WithDelays(cfg.Assist.Delays), assist.WithLogger(log)}
	if cfg.Assist.Seed != 0 {
		mockOpts = append(mockOpts, assist.WithSeed(cfg.Assist.Seed))
	}
	sess, err := session.New(ctx, doc,
		session.WithLogger(log),
		session.WithAssistant(assist.NewMock(mockOpts...)),
		session.WithDiscardStale(cfg.Assist.DiscardStale),
	)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to start session", err)
	}

	var pending *session.Pending
	switch feature {
	case assist.FeatureSuggestions:
		pending = sess.RequestSuggestions(ctx)
	case assist.FeatureParameters:
		pending = sess.RequestParameterSuggestions(ctx, opts.Endpoint)
	case assist.FeatureFields:
		pending = sess.RequestFieldSuggestions(ctx, opts.Model)
	case assist.FeaturePrompt:
		pending = sess.RequestPromptField(ctx, opts.Model, opts.Prompt)
	case assist.FeaturePerformance:
		pending = sess.RequestSimulation(ctx, cfg.Assist.Load)
	case assist.FeatureConversion:
		pending = sess.RequestConversion(ctx, target)
	}
	f.VerboseLog("waiting for %s (request %s)", feature, pending.Token)
	if err := pending.Wait(ctx); err != nil {
		return editFailure(f, err)
	}

	result := SuggestResult{Feature: feature}
	switch feature {
	case assist.FeatureSuggestions:
		result.Suggestions = sess.Suggestions()
		if f.JSON() {
			return f.Success(result)
		}
		for _, s := range result.Suggestions {
			fmt.Fprintf(f.Writer, "• %s\n", s)
		}
		return nil

	case assist.FeaturePerformance:
		result.Simulation = sess.Simulation()
		if f.JSON() {
			return f.Success(result)
		}
		outputSimulationText(f, cfg.Assist.Load, result.Simulation)
		return nil

	case assist.FeatureConversion:
		return writeProjection(f, target, sess.Converted(), opts.Out)
	}

	// Remaining features edit the document.
	edited := sess.Document()
	if opts.Out != "" {
		if err := loader.WriteFile(opts.Out, edited); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write document", err)
		}
		result.Path = opts.Out
		if f.JSON() {
			return f.Success(result)
		}
		return f.Success(fmt.Sprintf("✓ %s applied, wrote %s", feature, opts.Out))
	}
	if f.JSON() {
		result.Document = &edited
		return f.Success(result)
	}
	return printDocument(f, path, edited)
}

func outputSimulationText(f *OutputFormatter, cfg assist.LoadConfig, results []assist.PerformanceResult) {
	fmt.Fprintf(f.Writer, "Simulated %d users for %s\n", cfg.ConcurrentUsers, cfg.Duration)
	if len(results) == 0 {
		fmt.Fprintln(f.Writer, "No endpoints to simulate.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(f.Writer, "  %-6s %-30s %8s  %6.2f%%  %5d req/s\n",
			r.Method, r.Endpoint, r.Latency, r.SuccessRate, r.RequestsPerSecond)
	}
}
