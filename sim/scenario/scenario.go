// Package scenario loads marble test scenarios from YAML files and runs them
// through the marbletest harness.
package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/marblesim/sim/marble"
)

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("scenario.schema.json", schemaJSON)
})

// File is the top-level document of a scenario file.
type File struct {
	Path      string     `yaml:"-"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one source diagram replayed under one subscription window and
// compared with the expected diagrams.
// Empty strings mean "not set": an empty subscription subscribes at frame 0
// and never unsubscribes, an empty expected_subscription is not checked.
type Scenario struct {
	Name                 string         `yaml:"name"`
	Source               string         `yaml:"source"`
	Values               map[string]any `yaml:"values"`
	Error                any            `yaml:"error"`
	Subscription         string         `yaml:"subscription"`
	Expected             string         `yaml:"expected"`
	ExpectedSubscription string         `yaml:"expected_subscription"`
	Horizon              int64          `yaml:"horizon"`
}

// Load reads a scenario file, checks it against the embedded JSON schema and
// validates every diagram in it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*File, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// validateSchema round-trips the YAML document through JSON so the schema
// sees the same value shapes a JSON document would produce.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing scenario file: %w", err)
	}
	raw, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return fmt.Errorf("scenario file is not representable as JSON: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("scenario file does not match schema: %w", err)
	}
	return nil
}

// stringKeys rewrites mappings with non-string keys, such as the digit
// symbols of `values: {1: one}`, into the string-keyed maps JSON requires.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}

// Validate checks that scenario names are unique and every diagram compiles.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Scenarios))
	for _, s := range f.Scenarios {
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every diagram of s compiles.
func (s *Scenario) Validate() error {
	if _, err := marble.Compile(s.Source, s.Values, s.Error); err != nil {
		return fmt.Errorf("scenario %q: source: %w", s.Name, err)
	}
	if _, err := marble.Compile(s.Expected, s.Values, s.Error); err != nil {
		return fmt.Errorf("scenario %q: expected: %w", s.Name, err)
	}
	if _, err := marble.CompileWindow(s.Subscription); err != nil {
		return fmt.Errorf("scenario %q: subscription: %w", s.Name, err)
	}
	if _, err := marble.CompileWindow(s.ExpectedSubscription); err != nil {
		return fmt.Errorf("scenario %q: expected_subscription: %w", s.Name, err)
	}
	if s.Horizon < 0 {
		return fmt.Errorf("scenario %q: horizon must be non-negative, got %d", s.Name, s.Horizon)
	}
	return nil
}
