package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reqgraph/internal/status"
)

// Scenario is one requirement check with its expected outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description,omitempty"`

	// Ontology is the CUE ontology directory. Relative paths are resolved
	// against the scenario file's directory.
	Ontology string `yaml:"ontology"`

	// Query is the requirement query text. Exactly one of Query and
	// QueryFile must be set.
	Query     string `yaml:"query,omitempty"`
	QueryFile string `yaml:"query_file,omitempty"`

	// Violation optionally selects the individuals breaking the
	// requirement. At most one of Violation and ViolationFile may be set.
	Violation     string `yaml:"violation,omitempty"`
	ViolationFile string `yaml:"violation_file,omitempty"`

	// OrderExisting is the number of context hops used when solving.
	// Defaults to 1.
	OrderExisting *int `yaml:"order_existing,omitempty"`

	// ExcludeRelations are predicates dropped from the knowledge graph.
	ExcludeRelations []string `yaml:"exclude_relations,omitempty"`

	// RunID is the fixed run identifier. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks made against the pipeline report. Unset fields
// are not checked.
type Expect struct {
	// Satisfied is the expected verdict.
	Satisfied *bool `yaml:"satisfied,omitempty"`

	// Rows is the expected number of requirement rows.
	Rows *int `yaml:"rows,omitempty"`

	// Nodes maps node names of the result graph to their status.
	Nodes map[string]status.Node `yaml:"nodes,omitempty"`

	// Edges lists result-graph edges that must be present with a status.
	Edges []EdgeExpect `yaml:"edges,omitempty"`

	// Unresolved is the expected number of missing edges left unrouted.
	Unresolved *int `yaml:"unresolved,omitempty"`

	// Issues lists the expected issue codes in report order.
	Issues []string `yaml:"issues,omitempty"`
}

// EdgeExpect is one expected edge of the result graph.
type EdgeExpect struct {
	Subject   string      `yaml:"subject"`
	Predicate string      `yaml:"predicate"`
	Object    string      `yaml:"object"`
	Status    status.Edge `yaml:"status"`
}

// LoadScenario reads and parses a scenario YAML file.
//
// Unknown fields are rejected so typos surface as errors. Ontology and
// query file paths are resolved against the scenario's directory and query
// files are read into Query and Violation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.resolve(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// resolve makes paths absolute against base and inlines query files.
func (s *Scenario) resolve(base string) error {
	if s.Ontology != "" && !filepath.IsAbs(s.Ontology) {
		s.Ontology = filepath.Join(base, s.Ontology)
	}

	read := func(field, file string, dst *string) error {
		if file == "" {
			return nil
		}
		if *dst != "" {
			return fmt.Errorf("%s and %s_file are mutually exclusive", field, field)
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("%s_file: %w", field, err)
		}
		*dst = string(data)
		return nil
	}
	if err := read("query", s.QueryFile, &s.Query); err != nil {
		return err
	}
	return read("violation", s.ViolationFile, &s.Violation)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Ontology == "" {
		return fmt.Errorf("ontology is required")
	}
	if info, err := os.Stat(s.Ontology); err != nil || !info.IsDir() {
		return fmt.Errorf("ontology directory not found: %s", s.Ontology)
	}
	if s.Query == "" {
		return fmt.Errorf("query or query_file is required")
	}
	if s.OrderExisting != nil && *s.OrderExisting < 0 {
		return fmt.Errorf("order_existing must be non-negative")
	}

	for name, st := range s.Expect.Nodes {
		switch st {
		case status.NodeOK, status.NodeNew, status.NodeExisting:
		default:
			return fmt.Errorf("expect.nodes[%s]: unknown node status %q", name, st)
		}
	}
	for i, e := range s.Expect.Edges {
		if e.Subject == "" || e.Predicate == "" || e.Object == "" {
			return fmt.Errorf("expect.edges[%d]: subject, predicate and object are required", i)
		}
		if !e.Status.Valid() {
			return fmt.Errorf("expect.edges[%d]: unknown edge status %q", i, e.Status)
		}
	}
	if s.Expect.Rows != nil && *s.Expect.Rows < 0 {
		return fmt.Errorf("expect.rows must be non-negative")
	}
	if s.Expect.Unresolved != nil && *s.Expect.Unresolved < 0 {
		return fmt.Errorf("expect.unresolved must be non-negative")
	}
	return nil
}
