package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Func is a scalar function such as an activation or its derivative.
type Func func(float64) float64

// LayerSpec describes one layer of a topology: its neuron count and whether a
// bias unit is appended to its activated outputs.
type LayerSpec struct {
	Size int
	Bias bool
}

// Layer holds one layer's neuron state and the weights leading from its
// activated units to the next layer's neurons.
type Layer struct {
	neurons          []float64
	activatedNeurons []float64

	// weights[i][j] connects activated unit i to neuron j of the next layer.
	weights [][]float64
	bias    bool
}

// NewLayer allocates a layer of size neurons whose weight rows have nextSize
// columns, drawing every weight uniformly from [-1, 1) with the given
// distribution's source. nextSize is 0 for the output layer.
func NewLayer(size, nextSize int, bias bool, dist distuv.Uniform) *Layer {
	units := size
	if bias {
		units++
	}
	l := &Layer{
		neurons:          make([]float64, size),
		activatedNeurons: make([]float64, units),
		weights:          make([][]float64, units),
		bias:             bias,
	}
	if bias {
		l.activatedNeurons[size] = 1
	}
	for i := range l.weights {
		row := make([]float64, nextSize)
		for j := range row {
			row[j] = dist.Rand()
		}
		l.weights[i] = row
	}
	return l
}

// Activate writes fn(neurons[i]) into the activated units. The bias unit is
// left untouched.
func (l *Layer) Activate(fn Func) {
	for i, v := range l.neurons {
		l.activatedNeurons[i] = fn(v)
	}
}

// propagate writes the weighted sums of l's activated units into next's
// neurons.
func (l *Layer) propagate(next *Layer) {
	clear(next.neurons)
	for i, a := range l.activatedNeurons {
		floats.AddScaled(next.neurons, a, l.weights[i])
	}
}

// NumOfInputNeurons is the number of real neurons, excluding the bias unit.
func (l *Layer) NumOfInputNeurons() int { return len(l.neurons) }

func (l *Layer) Bias() bool { return l.bias }

func (l *Layer) Neurons() []float64 { return l.neurons }

func (l *Layer) ActivatedNeurons() []float64 { return l.activatedNeurons }

func (l *Layer) Weights() [][]float64 { return l.weights }

// WeightMatrix copies the weights into a dense matrix with one row per
// activated unit. It returns nil for the output layer, which has no weights.
func (l *Layer) WeightMatrix() *mat.Dense {
	cols := 0
	if len(l.weights) > 0 {
		cols = len(l.weights[0])
	}
	if cols == 0 {
		return nil
	}
	m := mat.NewDense(len(l.weights), cols, nil)
	for i, row := range l.weights {
		m.SetRow(i, row)
	}
	return m
}
