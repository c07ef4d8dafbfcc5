package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/blueprint/internal/project"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Pass         bool        `json:"pass"`
	Trace        []StepTrace `json:"trace"`
}

// RunWithGolden executes a scenario and compares its step trace, plus one
// projection per entry of scenario.Golden, against golden files in
// testdata/golden: {name}.golden and {name}_{target}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, sess, err := run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.MarshalIndent(TraceSnapshot{
		ScenarioName: scenario.Name,
		Pass:         result.Pass,
		Trace:        result.Trace,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, append(snapshot, '\n'))

	for _, name := range scenario.Golden {
		target, err := project.ParseTarget(name)
		if err != nil {
			return nil, err
		}
		out, err := sess.Project(target)
		if err != nil {
			return nil, err
		}
		g.Assert(t, scenario.Name+"_"+string(target), []byte(out))
	}

	return result, nil
}
