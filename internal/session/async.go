package session

import (
	"context"
	"errors"
	"slices"

	"github.com/roach88/blueprint/internal/assist"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/project"
)

// ErrStale is reported by a Pending whose result was dropped because a newer
// request for the same feature was issued (WithDiscardStale only).
var ErrStale = errors.New("stale assistant result discarded")

// Pending tracks one in-flight assistant request.
type Pending struct {
	Feature assist.Feature
	Token   string

	done chan struct{}
	err  error
}

// Done is closed once the result has been committed or dropped.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the request's outcome. Only valid after Done is closed.
func (p *Pending) Err() error {
	return p.err
}

// Wait blocks until the request finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every pending request has finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Suggestions returns the latest design suggestions.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.suggestions)
}

// Simulation returns the latest performance results.
func (s *Session) Simulation() []assist.PerformanceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.simulation)
}

// Converted returns the latest protocol conversion output.
func (s *Session) Converted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converted
}

// RequestSuggestions asks for design suggestions for the current document.
// On completion the suggestion list is replaced.
func (s *Session) RequestSuggestions(ctx context.Context) *Pending {
	doc := s.Document()
	return s.spawn(ctx, assist.FeatureSuggestions, func(ctx context.Context) (commitFunc, error) {
		got, err := s.assistant.Suggest(ctx, doc)
		if err != nil {
			return nil, err
		}
		return func(context.Context) error {
			s.suggestions = got
			return nil
		}, nil
	})
}

// RequestParameterSuggestions asks for parameters for the endpoint at index
// and appends them as one edit. The index is resolved when the result
// arrives, against the document current at that time.
func (s *Session) RequestParameterSuggestions(ctx context.Context, endpoint int) *Pending {
	doc := s.Document()
	var e ir.Endpoint
	if endpoint >= 0 && endpoint < len(doc.Endpoints) {
		e = doc.Endpoints[endpoint]
	}
	return s.spawnEdit(ctx, assist.FeatureParameters, func(ctx context.Context) (mutate.Op, error) {
		params, err := s.assistant.SuggestParameters(ctx, e)
		if err != nil {
			return nil, err
		}
		return &mutate.AddSuggestedParametersOp{Endpoint: endpoint, Parameters: params}, nil
	})
}

// RequestFieldSuggestions asks for fields for the named model and appends
// them as one edit.
func (s *Session) RequestFieldSuggestions(ctx context.Context, model string) *Pending {
	m, _ := s.Document().Schema.Get(model)
	return s.spawnEdit(ctx, assist.FeatureFields, func(ctx context.Context) (mutate.Op, error) {
		fields, err := s.assistant.SuggestFields(ctx, model, m)
		if err != nil {
			return nil, err
		}
		return &mutate.AddSuggestedFieldsOp{Model: model, Fields: fields}, nil
	})
}

// RequestPromptField turns prompt into a field and appends it to the named model.
func (s *Session) RequestPromptField(ctx context.Context, model, prompt string) *Pending {
	return s.spawnEdit(ctx, assist.FeaturePrompt, func(ctx context.Context) (mutate.Op, error) {
		f, err := s.assistant.FieldFromPrompt(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return &mutate.AddSuggestedFieldsOp{Model: model, Fields: []ir.Field{f}}, nil
	})
}

// RequestSimulation runs a mock load test of the current endpoints.
func (s *Session) RequestSimulation(ctx context.Context, cfg assist.LoadConfig) *Pending {
	endpoints := s.Document().Endpoints
	return s.spawn(ctx, assist.FeaturePerformance, func(ctx context.Context) (commitFunc, error) {
		results, err := s.assistant.Simulate(ctx, cfg, endpoints)
		if err != nil {
			return nil, err
		}
		return func(context.Context) error {
			s.simulation = results
			return nil
		}, nil
	})
}

// RequestConversion renders the current document for target after the
// assistant's delay.
func (s *Session) RequestConversion(ctx context.Context, target project.Target) *Pending {
	doc := s.Document()
	return s.spawn(ctx, assist.FeatureConversion, func(ctx context.Context) (commitFunc, error) {
		code, err := s.assistant.Convert(ctx, doc, target)
		if err != nil {
			return nil, err
		}
		return func(context.Context) error {
			s.converted = code
			return nil
		}, nil
	})
}

// commitFunc stores an assistant result. It runs with the session lock held.
type commitFunc func(ctx context.Context) error

// spawnEdit runs fetch in the background and applies the op it returns.
func (s *Session) spawnEdit(ctx context.Context, feature assist.Feature, fetch func(context.Context) (mutate.Op, error)) *Pending {
	return s.spawn(ctx, feature, func(ctx context.Context) (commitFunc, error) {
		op, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			_, err := s.applyLocked(ctx, op)
			return err
		}, nil
	})
}

// spawn issues a token for feature and runs fetch in a goroutine. The
// commit it returns runs under the session lock unless the result is stale.
func (s *Session) spawn(ctx context.Context, feature assist.Feature, fetch func(context.Context) (commitFunc, error)) *Pending {
	p := &Pending{Feature: feature, Token: s.tokens.Generate(), done: make(chan struct{})}

	s.mu.Lock()
	s.latest[feature] = p.Token
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(p.done)

		commit, err := fetch(ctx)
		if err != nil {
			s.logger.Debugw("assistant request failed", "session", s.id, "feature", feature, "token", p.Token, "error", err)
			p.err = err
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.discardStale && s.latest[feature] != p.Token {
			s.logger.Debugw("stale assistant result dropped", "session", s.id, "feature", feature, "token", p.Token)
			p.err = ErrStale
			return
		}
		if err := commit(ctx); err != nil {
			s.logger.Debugw("assistant result rejected", "session", s.id, "feature", feature, "token", p.Token, "error", err)
			p.err = err
			return
		}
		s.logger.Debugw("assistant result committed", "session", s.id, "feature", feature, "token", p.Token)
	}()
	return p
}
