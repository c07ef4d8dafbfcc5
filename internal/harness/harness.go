package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/roach88/blueprint/internal/history"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/loader"
	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/session"
	"github.com/roach88/blueprint/internal/store"
	"github.com/roach88/blueprint/internal/testutil"
	"github.com/roach88/blueprint/internal/validate"
)

// Error kinds reported for failed steps that carry no violation code.
const (
	KindIndexOutOfRange = "index_out_of_range"
	KindModelNotFound   = "model_not_found"
	KindDecode          = "decode"
	KindOther           = "error"
)

// sessionID is fixed so journals of different runs are comparable.
const sessionID = "scenario"

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. Execution flow:
//  1. Load the seed document
//  2. Apply each step, checking expect_error
//  3. Replay the journal and compare with the final document
//  4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	res, _, err := run(scenario)
	return res, err
}

func run(scenario *Scenario) (*Result, *session.Session, error) {
	ctx := context.Background()

	seed, err := loadSeed(scenario)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load seed: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer st.Close()

	sess, err := session.New(ctx, seed,
		session.WithID(sessionID),
		session.WithJournal(st),
		session.WithClock(testutil.NewStepClock(time.Second)),
		session.WithTokens(testutil.NewSequentialTokens("req")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		trace, err := ApplyStep(ctx, sess, step)
		trace.Step = i
		if err != nil {
			trace.Error = strings.Join(ErrorKinds(err), ",")
		}
		result.Trace = append(result.Trace, trace)

		switch {
		case step.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Label(), err))
		case step.ExpectError != "" && err == nil:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, step succeeded", i, step.Label(), step.ExpectError))
		case step.ExpectError != "" && !slices.Contains(ErrorKinds(err), step.ExpectError):
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %v", i, step.Label(), step.ExpectError, err))
		}
	}

	final := sess.Document()
	result.DocumentHash = ir.MustDocumentHash(final)

	replayed, err := st.Replay(ctx, sessionID)
	if err != nil {
		result.AddError(fmt.Sprintf("journal replay: %v", err))
	} else if got := ir.MustDocumentHash(replayed); got != result.DocumentHash {
		result.AddError("journal replay: replayed document differs from the final document")
	}

	for _, msg := range EvaluateAssertions(sess, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, sess, nil
}

func loadSeed(s *Scenario) (ir.Document, error) {
	if s.Document != "" {
		path := s.Document
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		return loader.Load(path)
	}
	name := s.Template
	if name == "" {
		name = loader.DefaultTemplate
	}
	return loader.Template(name)
}

// ApplyStep runs one step against sess. The returned trace carries the
// committed history index; Step and Error are left for the caller.
func ApplyStep(ctx context.Context, sess *session.Session, step Step) (StepTrace, error) {
	trace := StepTrace{Op: step.Label()}

	var (
		res session.Result
		err error
	)
	if step.Restore != nil {
		res, err = sess.Restore(ctx, *step.Restore)
	} else {
		var op mutate.Op
		op, err = buildOp(step)
		if err == nil {
			res, err = sess.Apply(ctx, op)
		}
	}
	if err != nil {
		return trace, err
	}
	trace.Seq = res.Entry.Seq
	return trace, nil
}

// buildOp decodes scenario args through the op's journal encoding.
func buildOp(step Step) (mutate.Op, error) {
	if len(step.Args) == 0 {
		return mutate.Unmarshal(step.Op, "")
	}
	args, err := json.Marshal(step.Args)
	if err != nil {
		return nil, &mutate.DecodeError{Op: step.Op, Err: err}
	}
	return mutate.Unmarshal(step.Op, string(args))
}

// ErrorKinds classifies err as violation codes or a single error kind.
func ErrorKinds(err error) []string {
	if ve, ok := validate.AsValidationError(err); ok {
		return ve.Codes()
	}
	var decodeErr *mutate.DecodeError
	switch {
	case errors.Is(err, mutate.ErrIndexOutOfRange), errors.Is(err, history.ErrOutOfRange):
		return []string{KindIndexOutOfRange}
	case errors.Is(err, mutate.ErrModelNotFound):
		return []string{KindModelNotFound}
	case errors.As(err, &decodeErr):
		return []string{KindDecode}
	default:
		return []string{KindOther}
	}
}
