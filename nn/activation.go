package nn

import "math"

// Activation pairs an activation function with its derivative. Derivative
// receives the raw pre-activation value, not the activated one.
type Activation struct {
	Name       string
	Activate   Func
	Derivative Func
}

func (a Activation) String() string { return a.Name }

var (
	Identity = Activation{
		Name:       "identity",
		Activate:   func(x float64) float64 { return x },
		Derivative: func(float64) float64 { return 1 },
	}

	Sigmoid = Activation{
		Name:     "sigmoid",
		Activate: sigmoid,
		Derivative: func(x float64) float64 {
			s := sigmoid(x)
			return s * (1 - s)
		},
	}

	Tanh = Activation{
		Name:     "tanh",
		Activate: math.Tanh,
		Derivative: func(x float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	}

	// ReLU leaks a small slope below zero so that dead units still train.
	ReLU = Activation{
		Name: "relu",
		Activate: func(x float64) float64 {
			if x < 0 {
				return 0.0001 * x
			}
			return x
		},
		Derivative: func(x float64) float64 {
			if x < 0 {
				return 0.0001
			}
			return 1
		},
	}
)

// ActivationLookup maps activation names to the built-in pairs.
var ActivationLookup = map[string]Activation{
	Identity.Name: Identity,
	Sigmoid.Name:  Sigmoid,
	Tanh.Name:     Tanh,
	ReLU.Name:     ReLU,
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
