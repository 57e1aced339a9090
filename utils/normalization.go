package utils

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Normalization is the per-feature input transform produced by
// NormalizeSamples, persisted next to a trained network.
type Normalization struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Apply normalises input in place.
func (n *Normalization) Apply(input []float64) error {
	if len(input) != len(n.Mean) || len(input) != len(n.Std) {
		return errors.Errorf("input has %d values, normalization has %d", len(input), len(n.Mean))
	}
	NormalizeInput(input, n.Mean, n.Std)
	return nil
}

// SaveNormalization saves the transform to a JSON file
func SaveNormalization(filepath string, n *Normalization) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal normalization")
	}
	return errors.Wrap(os.WriteFile(filepath, data, 0644), "failed to write normalization file")
}

// LoadNormalization loads the transform from a JSON file
func LoadNormalization(filepath string) (*Normalization, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read normalization file")
	}
	var n Normalization
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal normalization")
	}
	if len(n.Mean) != len(n.Std) {
		return nil, errors.Errorf("normalization has %d means and %d deviations", len(n.Mean), len(n.Std))
	}
	return &n, nil
}
