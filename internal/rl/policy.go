package rl

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// policyDataEntry is the archive member holding the serialized policy.
const policyDataEntry = "data.json"

type layerData struct {
	Weights    [][]float64 `json:"weights"` // rows: outputs, cols: inputs
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // tanh or linear
}

type policyData struct {
	AlgoClass  string      `json:"algo_class"`
	ObsSize    int         `json:"obs_size"`
	NumActions int         `json:"num_actions"`
	Layers     []layerData `json:"layers"`
}

type denseLayer struct {
	weights    *mat.Dense
	biases     *mat.VecDense
	activation string
}

// Policy is a feed-forward action-logit network deserialized from a
// model archive.
type Policy struct {
	AlgoClass  string
	ObsSize    int
	NumActions int

	layers []denseLayer
	rng    *rand.Rand
}

// LoadPolicy reads a policy from a model archive. The seed drives action
// sampling when predictions are stochastic.
func LoadPolicy(path string, seed int64) (*Policy, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model archive %s: %w", path, err)
	}
	defer reader.Close()

	var data *policyData
	for _, entry := range reader.File {
		if entry.Name != policyDataEntry {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse %s in %s: %w", policyDataEntry, path, err)
		}
		break
	}
	if data == nil {
		return nil, fmt.Errorf("model archive %s has no %s entry", path, policyDataEntry)
	}

	return newPolicy(data, seed)
}

func newPolicy(data *policyData, seed int64) (*Policy, error) {
	p := &Policy{
		AlgoClass:  data.AlgoClass,
		ObsSize:    data.ObsSize,
		NumActions: data.NumActions,
		rng:        rand.New(rand.NewSource(seed)),
	}

	inputs := data.ObsSize
	for i, layer := range data.Layers {
		rows := len(layer.Weights)
		if rows == 0 || len(layer.Weights[0]) != inputs {
			return nil, fmt.Errorf("layer %d: weight shape mismatch (want %d inputs)", i, inputs)
		}
		if len(layer.Biases) != rows {
			return nil, fmt.Errorf("layer %d: bias length %d does not match %d outputs", i, len(layer.Biases), rows)
		}

		flat := make([]float64, 0, rows*inputs)
		for _, row := range layer.Weights {
			flat = append(flat, row...)
		}
		p.layers = append(p.layers, denseLayer{
			weights:    mat.NewDense(rows, inputs, flat),
			biases:     mat.NewVecDense(rows, append([]float64(nil), layer.Biases...)),
			activation: layer.Activation,
		})
		inputs = rows
	}
	if inputs != data.NumActions {
		return nil, fmt.Errorf("network outputs %d values for %d actions", inputs, data.NumActions)
	}
	return p, nil
}

// forward computes action logits for a single observation.
func (p *Policy) forward(obs []float64) []float64 {
	x := mat.NewVecDense(len(obs), append([]float64(nil), obs...))
	for _, layer := range p.layers {
		rows, _ := layer.weights.Dims()
		out := mat.NewVecDense(rows, nil)
		out.MulVec(layer.weights, x)
		out.AddVec(out, layer.biases)
		if layer.activation == "tanh" {
			for i := 0; i < rows; i++ {
				out.SetVec(i, math.Tanh(out.AtVec(i)))
			}
		}
		x = out
	}
	return x.RawVector().Data
}

// Predict selects an action for an observation: the argmax of the action
// logits when deterministic, otherwise a softmax sample.
func (p *Policy) Predict(obs []float64, deterministic bool) int {
	logits := p.forward(obs)
	if deterministic {
		best := 0
		for i, v := range logits {
			if v > logits[best] {
				best = i
			}
		}
		return best
	}
	return sampleSoftmax(p.rng, logits)
}

func sampleSoftmax(rng *rand.Rand, logits []float64) int {
	maxLogit := logits[0]
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	probs := make([]float64, len(logits))
	for i, v := range logits {
		probs[i] = math.Exp(v - maxLogit)
		sum += probs[i]
	}
	r := rng.Float64() * sum
	for i, pr := range probs {
		r -= pr
		if r <= 0 {
			return i
		}
	}
	return len(logits) - 1
}

// Save writes the policy as a model archive at path.
func (p *Policy) Save(path string) error {
	data := policyData{
		AlgoClass:  p.AlgoClass,
		ObsSize:    p.ObsSize,
		NumActions: p.NumActions,
	}
	for _, layer := range p.layers {
		rows, cols := layer.weights.Dims()
		weights := make([][]float64, rows)
		for r := 0; r < rows; r++ {
			weights[r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				weights[r][c] = layer.weights.At(r, c)
			}
		}
		biases := make([]float64, rows)
		for r := 0; r < rows; r++ {
			biases[r] = layer.biases.AtVec(r)
		}
		data.Layers = append(data.Layers, layerData{
			Weights:    weights,
			Biases:     biases,
			Activation: layer.activation,
		})
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entry, err := zw.Create(policyDataEntry)
	if err != nil {
		return err
	}
	if _, err := entry.Write(raw); err != nil {
		return err
	}
	return zw.Close()
}
