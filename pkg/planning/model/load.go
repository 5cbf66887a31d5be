package model

import (
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Decode parses a YAML or JSON problem document and validates it.
func Decode(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding problem")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and decodes the problem file at path. Environment
// variables in path are expanded.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading problem %s", path)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading problem %s", path)
	}
	return p, nil
}
