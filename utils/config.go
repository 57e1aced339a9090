package utils

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nullptroma/NeuralNetwork/nn"
)

// Config holds the settings of a training run.
type Config struct {
	Name          string
	Architecture  []nn.LayerSpec
	Activation    string
	LearningRatio float64
	Steps         int
	Epochs        int
	Seed          uint64
}

// ParseArchitecture parses a whitespace separated list of layer sizes. A
// trailing "b" on a size appends a bias unit to that layer, e.g. "2b 3b 2".
func ParseArchitecture(archStr string) ([]nn.LayerSpec, error) {
	archParts := strings.Fields(archStr)
	arch := make([]nn.LayerSpec, len(archParts))
	for i, s := range archParts {
		var spec nn.LayerSpec
		if strings.HasSuffix(s, "b") {
			spec.Bias = true
			s = strings.TrimSuffix(s, "b")
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		spec.Size = n
		arch[i] = spec
	}
	return arch, nil
}

// FormatArchitecture is the inverse of ParseArchitecture.
func FormatArchitecture(arch []nn.LayerSpec) string {
	parts := make([]string, len(arch))
	for i, spec := range arch {
		parts[i] = strconv.Itoa(spec.Size)
		if spec.Bias {
			parts[i] += "b"
		}
	}
	return strings.Join(parts, " ")
}

// ParseFloats parses a comma separated list of numbers such as "0.2,0.8".
func ParseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 1 {
		return errors.New("architecture must have at least 1 layer")
	}
	for i, spec := range config.Architecture {
		if spec.Size <= 0 {
			return errors.Errorf("layer %d size must be positive", i)
		}
	}

	if config.LearningRatio < 0 {
		return errors.New("learning ratio must not be negative")
	}

	if config.Steps < 0 {
		return errors.New("steps must not be negative")
	}

	if config.Epochs < 0 {
		return errors.New("epochs must not be negative")
	}

	if _, ok := nn.ActivationLookup[config.Activation]; !ok {
		return errors.Errorf("unknown activation %q", config.Activation)
	}

	return nil
}
