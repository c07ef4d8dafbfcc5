// Package assist provides the simulated assistant features: design
// suggestions, parameter and field suggestions, prompt-to-field, a mock
// performance run and delayed protocol conversion.
//
// None of these call a real service. Assistant is the seam a real backend
// would implement; Mock returns canned or seeded-random data after a
// configurable delay and honours context cancellation while it waits.
package assist

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/project"
)

// Feature names an asynchronous assistant capability.
// A session tracks pending requests per feature.
type Feature string

const (
	FeatureSuggestions Feature = "suggestions"
	FeatureParameters  Feature = "parameters"
	FeatureFields      Feature = "fields"
	FeaturePrompt      Feature = "prompt"
	FeaturePerformance Feature = "performance"
	FeatureConversion  Feature = "conversion"
)

// ErrEmptyPrompt is returned by FieldFromPrompt for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Assistant produces suggestions for a document.
// Implementations must be safe for concurrent use.
type Assistant interface {
	// Suggest returns free-text design suggestions for doc.
	Suggest(ctx context.Context, doc ir.Document) ([]string, error)

	// SuggestParameters returns parameters to append to e.
	SuggestParameters(ctx context.Context, e ir.Endpoint) ([]ir.Parameter, error)

	// SuggestFields returns fields to append to the named model.
	SuggestFields(ctx context.Context, name string, m ir.Model) ([]ir.Field, error)

	// FieldFromPrompt turns a free-text prompt into one field.
	FieldFromPrompt(ctx context.Context, prompt string) (ir.Field, error)

	// Simulate returns one mock load-test result per endpoint.
	Simulate(ctx context.Context, cfg LoadConfig, endpoints []ir.Endpoint) ([]PerformanceResult, error)

	// Convert renders doc for target.
	Convert(ctx context.Context, doc ir.Document, target project.Target) (string, error)
}

// LoadConfig parameterizes a simulated performance run.
type LoadConfig struct {
	ConcurrentUsers int           `json:"concurrentUsers" mapstructure:"concurrent_users" validate:"gt=0"`
	Duration        time.Duration `json:"duration" mapstructure:"duration" validate:"gt=0"`
}

// DefaultLoadConfig returns 100 users for 30 seconds.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{ConcurrentUsers: 100, Duration: 30 * time.Second}
}

// PerformanceResult is the simulated outcome for one endpoint.
type PerformanceResult struct {
	Endpoint          string        `json:"endpoint"`
	Method            ir.Method     `json:"method"`
	Latency           time.Duration `json:"latency"`
	SuccessRate       float64       `json:"successRate"` // percent
	RequestsPerSecond int           `json:"requestsPerSecond"`
}

// Delays sets how long each Mock feature waits before answering.
type Delays struct {
	Suggestions time.Duration `mapstructure:"suggestions"`
	Parameters  time.Duration `mapstructure:"parameters"`
	Fields      time.Duration `mapstructure:"fields"`
	Prompt      time.Duration `mapstructure:"prompt"`
	Performance time.Duration `mapstructure:"performance"`
	Conversion  time.Duration `mapstructure:"conversion"`
}

// DefaultDelays mirrors the latency of the interactive editor.
func DefaultDelays() Delays {
	return Delays{
		Fields:      1500 * time.Millisecond,
		Prompt:      2 * time.Second,
		Performance: 2 * time.Second,
		Conversion:  2 * time.Second,
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
