// Package harness provides conformance testing for the Candid parser.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	input: |
//	  type A = record { b : B };
//	  type B = record { a : A };
//	  service : { ping : () -> (A) }
//	expect:
//	  methods:
//	    ping: "() -> (μrec_0.record { b : record { a : rec_0; }; })"
//	  recursion_count: 1
//
// Instead of input, a scenario may name a file relative to the scenario
// file. A scenario that expects failure sets error_kind to one of the
// compiler error kinds and nothing else.
//
// # Checks
//
// Besides the expect clause, every successful parse is checked for:
//
//   - the canonical-form invariants (compiler.Validate)
//   - the round-trip law: parse(emit(T)) is equivalent to T
//   - idempotent emission: emit(parse(emit(T))) == emit(T)
//   - archive round trip through an in-memory store
//
// # Golden Snapshots
//
// RunWithGolden compares a JSON snapshot of the result against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
