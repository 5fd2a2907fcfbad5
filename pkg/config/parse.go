package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseProblemYAML parses a Problem from YAML bytes and validates it.
// This is used for APIs where the problem is provided as payload
// (not via filesystem).
func ParseProblemYAML(data []byte) (*Problem, error) {
	var problem Problem
	if err := yaml.Unmarshal(data, &problem); err != nil {
		return nil, fmt.Errorf("failed to parse problem yaml: %w", err)
	}

	if err := validateProblem(&problem); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}

	return &problem, nil
}

// ParseProblemYAMLString parses a Problem from a YAML string and validates it.
func ParseProblemYAMLString(yamlText string) (*Problem, error) {
	return ParseProblemYAML([]byte(yamlText))
}
