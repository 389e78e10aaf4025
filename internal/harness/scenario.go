package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// Scenario defines a conformance test scenario: one Candid document and
// what parsing it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Input is inline Candid text. Exactly one of Input and File is set.
	Input string `yaml:"input,omitempty"`

	// File is a path to a Candid file, relative to the scenario file.
	File string `yaml:"file,omitempty"`

	// Strict parses with compiler.Options.Strict.
	Strict bool `yaml:"strict,omitempty"`

	// Expect holds the expected outcome.
	Expect Expect `yaml:"expect"`
}

// Expect describes the expected outcome of a scenario. Unset fields are
// not checked.
type Expect struct {
	// Methods is the exact expected method table.
	Methods map[string]string `yaml:"methods,omitempty"`

	// Canonical is the expected emitted service text.
	Canonical string `yaml:"canonical,omitempty"`

	// ErrorKind expects parsing to fail with this compiler error kind.
	ErrorKind string `yaml:"error_kind,omitempty"`

	// RecursionCount is the expected number of Recursion nodes.
	RecursionCount *int `yaml:"recursion_count,omitempty"`

	// Warnings lists expected warning codes, in order.
	Warnings []string `yaml:"warnings,omitempty"`
}

var errorKinds = []compiler.ErrorKind{
	compiler.KindCommon,
	compiler.KindEmptyPathPop,
	compiler.KindDuplicateRecursionBinding,
	compiler.KindMissingRecursionBinding,
	compiler.KindMissingType,
	compiler.KindWrongComment,
	compiler.KindParse,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative File is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.File != "" && !filepath.IsAbs(scenario.File) {
		scenario.File = filepath.Join(filepath.Dir(path), scenario.File)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. An optional filter keeps only scenarios whose name contains it.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if filter != "" && !strings.Contains(scenario.Name, filter) {
			continue
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	switch {
	case s.Input == "" && s.File == "":
		return errors.New("one of input or file is required")
	case s.Input != "" && s.File != "":
		return errors.New("input and file are mutually exclusive")
	}

	if s.File != "" {
		if _, err := os.Stat(s.File); err != nil {
			return fmt.Errorf("file %s: %w", s.File, err)
		}
	}

	e := s.Expect
	if e.ErrorKind != "" {
		if !slices.Contains(errorKinds, compiler.ErrorKind(e.ErrorKind)) {
			return fmt.Errorf("expect.error_kind: unknown kind %q", e.ErrorKind)
		}
		if e.Methods != nil || e.Canonical != "" || e.RecursionCount != nil || e.Warnings != nil {
			return errors.New("expect.error_kind cannot be combined with other expectations")
		}
	}
	if e.RecursionCount != nil && *e.RecursionCount < 0 {
		return errors.New("expect.recursion_count must not be negative")
	}

	return nil
}

// source returns the Candid text of the scenario.
func (s *Scenario) source() (string, error) {
	if s.Input != "" {
		return s.Input, nil
	}
	data, err := os.ReadFile(s.File)
	if err != nil {
		return "", fmt.Errorf("failed to read candid file: %w", err)
	}
	return string(data), nil
}
