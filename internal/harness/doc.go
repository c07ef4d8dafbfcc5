// Package harness runs scripted editing scenarios against a real session.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: checkout_api
//	description: "What this scenario validates"
//	template: blank           # or document: seed.yaml (relative to the file)
//	steps:
//	  - op: add-endpoint
//	  - op: update-endpoint
//	    args: { index: 0, method: INVALID }
//	    expect_error: E202
//	  - restore: 0
//	assertions:
//	  - type: endpoint_count
//	    count: 0
//	  - type: projection_contains
//	    target: graphql
//	    contains: "scalar JSON"
//	golden: [graphql, idl]
//
// # Assertion Types
//
//   - endpoint_count: number of endpoints in the final document
//   - models: model names of the final document, in schema order
//   - fields: field names of one model, in order
//   - history_length: number of history entries, seed included
//   - warning_count: number of reference warnings on the final document
//   - projection_contains: a projection of the final document contains a substring
//
// # Deterministic Execution
//
// Every scenario runs with a step clock, sequential request tokens and a
// fresh in-memory journal. After the steps, the journal is replayed and
// must reproduce the final document, so each scenario also checks replay.
package harness
