package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// Snapshot captures the observable outcome of a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Kind         string
	Params       string
	IDs          []int64
	Tables       []string
	Error        string
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	ids := make([]any, len(s.IDs))
	for i, id := range s.IDs {
		ids[i] = id
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"kind":          s.Kind,
	}
	if s.Error != "" {
		m["error"] = s.Error
		return m
	}
	m["params"] = s.Params
	m["ids"] = ids
	m["tables"] = s.Tables
	return m
}

// newSnapshot builds the snapshot of result for scenario.
func newSnapshot(scenario *Scenario, result *Result) Snapshot {
	snap := Snapshot{
		ScenarioName: scenario.Name,
		Kind:         scenario.Kind,
		Params:       result.Params,
		IDs:          result.IDs,
		Tables:       result.Tables,
	}
	if result.Err != nil {
		snap.Error = result.Err.Error()
	}
	return snap
}

// RunWithGolden executes a scenario and compares its outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run or its expectation fails.
// Test failure (via goldie) occurs if the outcome doesn't match the golden
// file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}
	return AssertGolden(t, scenario, result)
}

// AssertGolden compares an already computed result against the scenario's
// golden file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := newSnapshot(scenario, result)
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
