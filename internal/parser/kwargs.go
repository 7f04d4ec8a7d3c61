package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseEnvKwargs parses repeatable "key:value" flag values into a map.
// Values are decoded as YAML scalars, so `n_stack:4`, `scale:0.5` and
// `terminate_on_flip:true` keep their natural types.
func ParseEnvKwargs(kwargs []string) (map[string]any, error) {
	if len(kwargs) == 0 {
		return nil, nil
	}

	result := make(map[string]any, len(kwargs))
	for _, kwarg := range kwargs {
		parts := strings.SplitN(kwarg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid env kwarg format: %s (expected key:value)", kwarg)
		}

		var value any
		if err := yaml.Unmarshal([]byte(parts[1]), &value); err != nil {
			return nil, fmt.Errorf("invalid env kwarg value %q: %w", parts[1], err)
		}
		result[strings.TrimSpace(parts[0])] = value
	}
	return result, nil
}
