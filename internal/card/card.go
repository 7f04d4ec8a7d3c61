// Package card renders the Markdown model card and metadata block
// published alongside a model.
package card

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Generate builds the model card body and its metadata mapping. The
// supplied reward statistics are embedded unchanged.
func Generate(algoName, algoClassName, organization, envID string, meanReward, stdReward float64, hyperparams, envKwargs map[string]any) (string, map[string]any, error) {
	metadata := Metadata(algoName, algoClassName, envID, meanReward, stdReward)

	var b strings.Builder
	fmt.Fprintf(&b, `
# **%[1]s** Agent playing **%[2]s**
This is a trained model of a **%[1]s** agent playing **%[2]s**
using the zoo-hub training framework.
`, algoClassName, envID)

	fmt.Fprintf(&b, `
## Usage

`+"```"+`
# Download model and save it into the logs/ folder
zoo-hub pull --algo %[1]s --env %[2]s --organization %[3]s -f logs/
zoo-hub enjoy --algo %[1]s --env %[2]s -f logs/
`+"```"+`

## Training

`+"```"+`
zoo-hub train --algo %[1]s --env %[2]s -f logs/
# Upload the model and generate video (when possible)
zoo-hub push --algo %[1]s --env %[2]s -f logs/ --organization %[3]s
`+"```"+`

## Hyperparameters
`, algoName, envID, organization)

	hyperparamsBlock, err := yamlBlock(hyperparams)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render hyperparameters: %w", err)
	}
	b.WriteString(hyperparamsBlock)

	if len(envKwargs) > 0 {
		b.WriteString("\n# Environment Arguments\n")
		kwargsBlock, err := yamlBlock(envKwargs)
		if err != nil {
			return "", nil, fmt.Errorf("failed to render env kwargs: %w", err)
		}
		b.WriteString(kwargsBlock)
	}

	return b.String(), metadata, nil
}

// Metadata builds the structured metadata mapping for a model card.
func Metadata(algoName, algoClassName, envID string, meanReward, stdReward float64) map[string]any {
	return map[string]any{
		"library_name": "zoo-hub",
		"tags": []string{
			envID,
			"deep-reinforcement-learning",
			"reinforcement-learning",
			algoName,
		},
		"mean_reward": meanReward,
		"std_reward":  stdReward,
		"model-index": []any{
			map[string]any{
				"name": algoClassName,
				"results": []any{
					map[string]any{
						"task": map[string]any{
							"type": "reinforcement-learning",
							"name": "reinforcement-learning",
						},
						"dataset": map[string]any{
							"type": envID,
							"name": envID,
						},
						"metrics": []any{
							map[string]any{
								"type":  "mean_reward",
								"value": fmt.Sprintf("%.2f +/- %.2f", meanReward, stdReward),
							},
						},
					},
				},
			},
		},
	}
}

// Save writes README.md into dir: the metadata as a YAML front-matter
// block followed by the card body. Any existing README is overwritten.
func Save(dir, markdown string, metadata map[string]any) error {
	meta, err := yaml.Marshal(metadata)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n")
	b.WriteString(markdown)

	return os.WriteFile(filepath.Join(dir, "README.md"), []byte(b.String()), 0o644)
}

func yamlBlock(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "```yaml\n{}\n```\n", nil
	}
	body, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}
	return "```yaml\n" + string(body) + "```\n", nil
}
