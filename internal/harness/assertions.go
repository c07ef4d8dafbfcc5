package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/blueprint/internal/project"
	"github.com/roach88/blueprint/internal/session"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the session and
// returns one message per failure.
func EvaluateAssertions(sess *session.Session, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(sess, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(sess *session.Session, a Assertion) error {
	doc := sess.Document()

	switch a.Type {
	case AssertEndpointCount:
		return expectCount(a.Type, a.Count, len(doc.Endpoints))

	case AssertHistoryLength:
		return expectCount(a.Type, a.Count, len(sess.History()))

	case AssertWarningCount:
		return expectCount(a.Type, a.Count, len(sess.Warnings()))

	case AssertModels:
		return expectNames(a.Type, a.Names, doc.Schema.Names())

	case AssertFields:
		m, ok := doc.Schema.Get(a.Model)
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("model %q", a.Model), Actual: "no such model"}
		}
		names := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			names[i] = f.Name
		}
		return expectNames(a.Type, a.Names, names)

	case AssertProjectionContains:
		target, err := project.ParseTarget(a.Target)
		if err != nil {
			return err
		}
		out, err := sess.Project(target)
		if err != nil {
			return fmt.Errorf("project %s: %w", target, err)
		}
		if !strings.Contains(out, a.Contains) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s output containing %q", target, a.Contains),
				Actual:   fmt.Sprintf("not found in:\n%s", out),
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func expectCount(kind string, want, got int) error {
	if want != got {
		return &AssertionError{Type: kind, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}

func expectNames(kind string, want, got []string) error {
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, got) {
		return &AssertionError{Type: kind, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}
