// Package harness executes YAML-defined conformance scenarios against the
// conversion engine.
//
// A scenario bundles a configuration, an inline modifier catalog, and a row
// script, then asserts on the resolved event log: which events appear, in
// what order, the closing gauge level, and which frames sit inside a burst
// window. Scenarios that should abort declare the expected failure code
// instead of assertions.
//
// Golden comparison serializes the resolved log to canonical JSON and checks
// it byte-for-byte against a fixture, which pins the engine's exact output
// for a scenario. Regenerate fixtures with:
//
//	go test ./internal/harness -update
package harness
