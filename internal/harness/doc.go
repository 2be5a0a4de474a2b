// Package harness runs requirement-check scenarios.
//
// A scenario names an ontology, a requirement query and what the check is
// expected to produce. The harness runs the diagnosis pipeline on it and
// reports every expectation that did not hold.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: widget_needs_sensor
//	description: "Every widget carries a sensor part"
//	ontology: ../ontology            # CUE directory, relative to this file
//	query_file: ../queries/sensor.rq  # or inline: query: |
//	violation: |                      # optional
//	  SELECT ?w WHERE { ... FILTER NOT EXISTS { ... } }
//	order_existing: 1
//	expect:
//	  satisfied: false
//	  rows: 1
//	  nodes:
//	    W2: ok
//	    "?s": new
//	  edges:
//	    - subject: W2
//	      predicate: core.hasPart
//	      object: "?s"
//	      status: add2new
//	  unresolved: 0
//	  issues: []
//
// Node and edge expectations are checked against the helper graph when the
// pipeline derived one and against the instantiated graph otherwise.
// Expectations left out are not checked.
//
// # Deterministic Testing
//
// Every scenario runs in a fresh in-memory store with a step clock and a
// fixed run identifier, so the same scenario always yields the same
// report. RunWithGolden compares a status summary of that report with a
// golden file.
package harness
