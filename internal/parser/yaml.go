package parser

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAMLMap decodes an arbitrary YAML mapping, such as a run's
// config.yml hyperparameter file.
func ParseYAMLMap(reader io.Reader) (map[string]any, error) {
	var data map[string]any
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML mapping: %w", err)
	}

	return data, nil
}

// ParseYAMLFile is ParseYAMLMap for a file on disk.
func ParseYAMLFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ParseYAMLMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// RunArgs is the subset of a training run's args.yml consumed here.
type RunArgs struct {
	EnvKwargs map[string]any `yaml:"env_kwargs"`
}

// ParseRunArgs decodes the args.yml saved next to a trained model.
func ParseRunArgs(reader io.Reader) (*RunArgs, error) {
	var args RunArgs
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(&args); err != nil {
		return nil, fmt.Errorf("failed to parse run args: %w", err)
	}

	return &args, nil
}
