package assist

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/project"
)

const uuidV4Pattern = "^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$"

var (
	whitespace = regexp.MustCompile(`\s+`)
	configs    = validator.New(validator.WithRequiredStructEnabled())
)

// Mock is an Assistant that returns canned data.
//
// Random values come from a seeded PCG source, so two Mocks built with the
// same seed produce the same simulation results in the same call order.
type Mock struct {
	delays Delays
	log    *zap.SugaredLogger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Assistant = (*Mock)(nil)

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithDelays overrides DefaultDelays.
func WithDelays(d Delays) MockOption {
	return func(m *Mock) { m.delays = d }
}

// WithSeed seeds the random source used by Simulate.
func WithSeed(seed uint64) MockOption {
	return func(m *Mock) { m.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(log *zap.SugaredLogger) MockOption {
	return func(m *Mock) { m.log = log }
}

// NewMock creates a Mock with default delays and a time-based seed.
func NewMock(opts ...MockOption) *Mock {
	seed := uint64(time.Now().UnixNano())
	m := &Mock{
		delays: DefaultDelays(),
		log:    zap.NewNop().Sugar(),
		rng:    rand.New(rand.NewPCG(seed, seed)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) Suggest(ctx context.Context, doc ir.Document) ([]string, error) {
	if err := wait(ctx, m.delays.Suggestions); err != nil {
		return nil, err
	}
	m.log.Debugw("suggestions ready", "endpoints", len(doc.Endpoints), "models", doc.Schema.Len())
	return []string{
		"Add pagination metadata to GET /products response",
		"Include rate limiting headers in responses",
		"Add search endpoint with fuzzy matching",
		"Consider adding bulk operations endpoint",
	}, nil
}

func (m *Mock) SuggestParameters(ctx context.Context, e ir.Endpoint) ([]ir.Parameter, error) {
	if err := wait(ctx, m.delays.Parameters); err != nil {
		return nil, err
	}
	m.log.Debugw("parameter suggestions ready", "path", e.Path)
	return []ir.Parameter{
		{
			Name:        "page",
			Type:        ir.TypeNumber,
			Description: "Page number for pagination",
			Example:     "1",
			Validation:  &ir.Constraints{Min: ir.Int64(1)},
		},
		{
			Name:        "limit",
			Type:        ir.TypeNumber,
			Description: "Number of items per page",
			Example:     "10",
			Validation:  &ir.Constraints{Min: ir.Int64(1), Max: ir.Int64(100)},
		},
	}, nil
}

func (m *Mock) SuggestFields(ctx context.Context, name string, _ ir.Model) ([]ir.Field, error) {
	if err := wait(ctx, m.delays.Fields); err != nil {
		return nil, err
	}
	m.log.Debugw("field suggestions ready", "model", name)
	return []ir.Field{
		{
			Name:        "id",
			Type:        ir.TypeString,
			Description: "Unique identifier for the record",
			Required:    true,
			Example:     "uuid-v4",
			Validation:  ir.Constraints{Pattern: uuidV4Pattern},
		},
		{
			Name:        "createdAt",
			Type:        ir.TypeDate,
			Description: "Timestamp when the record was created",
			Required:    true,
			Example:     "2024-03-15T10:30:00Z",
		},
		{
			Name:        "updatedAt",
			Type:        ir.TypeDate,
			Description: "Timestamp when the record was last updated",
			Required:    true,
			Example:     "2024-03-15T10:30:00Z",
		},
	}, nil
}

// FieldFromPrompt names the field after the prompt: trimmed, lower-cased,
// with whitespace runs replaced by "_".
func (m *Mock) FieldFromPrompt(ctx context.Context, prompt string) (ir.Field, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ir.Field{}, ErrEmptyPrompt
	}
	if err := wait(ctx, m.delays.Prompt); err != nil {
		return ir.Field{}, err
	}
	return ir.Field{
		Name:        whitespace.ReplaceAllString(strings.ToLower(trimmed), "_"),
		Type:        ir.TypeString,
		Description: "Field generated from prompt: " + prompt,
		Example:     "example value",
	}, nil
}

func (m *Mock) Simulate(ctx context.Context, cfg LoadConfig, endpoints []ir.Endpoint) ([]PerformanceResult, error) {
	if err := configs.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid load config: %w", err)
	}

	// Results are drawn before waiting, matching the editor's behaviour.
	results := make([]PerformanceResult, len(endpoints))
	m.mu.Lock()
	for i, e := range endpoints {
		latency := 50*time.Millisecond + time.Duration(m.rng.Float64()*float64(200*time.Millisecond))
		results[i] = PerformanceResult{
			Endpoint:          e.Path,
			Method:            e.Method,
			Latency:           latency.Round(time.Microsecond),
			SuccessRate:       90 + m.rng.Float64()*10,
			RequestsPerSecond: 500 + m.rng.IntN(1000),
		}
	}
	m.mu.Unlock()

	if err := wait(ctx, m.delays.Performance); err != nil {
		return nil, err
	}
	m.log.Debugw("simulation finished", "endpoints", len(endpoints), "users", cfg.ConcurrentUsers, "duration", cfg.Duration)
	return results, nil
}

func (m *Mock) Convert(ctx context.Context, doc ir.Document, target project.Target) (string, error) {
	if err := wait(ctx, m.delays.Conversion); err != nil {
		return "", err
	}
	return project.Generate(doc, target)
}
