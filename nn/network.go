package nn

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config describes a network to build with NewNetwork.
type Config struct {
	Name     string
	Topology []LayerSpec

	Activate   Func
	Derivative Func

	LearningRatio float64

	// Source seeds weight initialisation. A nil Source uses the global one.
	Source rand.Source
}

// Network is a fully connected feedforward network trained one sample at a
// time. A Network is not safe for concurrent use: every pass mutates the
// layers and delta buffers in place.
type Network struct {
	Name          string
	LearningRatio float64

	layers []*Layer

	activate   Func
	derivative Func

	curDeltas  []float64
	lastDeltas []float64
}

// Sample is one input vector with its expected output.
type Sample struct {
	Input  []float64
	Target []float64
}

// NewNetwork builds the layers described by c.Topology. The output size of
// layer i becomes the column count of layer i-1's weights.
func NewNetwork(c Config) (*Network, error) {
	if len(c.Topology) == 0 {
		return nil, ErrEmptyTopology
	}
	for i, spec := range c.Topology {
		if spec.Size <= 0 {
			return nil, errors.Wrapf(ErrEmptyTopology, "layer %d has size %d", i, spec.Size)
		}
	}

	dist := distuv.Uniform{Min: -1, Max: 1, Src: c.Source}
	net := &Network{
		Name:          c.Name,
		LearningRatio: c.LearningRatio,
		layers:        make([]*Layer, len(c.Topology)),
		activate:      c.Activate,
		derivative:    c.Derivative,
	}
	last := len(c.Topology) - 1
	for i := 0; i < last; i++ {
		net.layers[i] = NewLayer(c.Topology[i].Size, c.Topology[i+1].Size, c.Topology[i].Bias, dist)
	}
	net.layers[last] = NewLayer(c.Topology[last].Size, 0, c.Topology[last].Bias, dist)

	return net, nil
}

// SetFuncs replaces the activation and derivative functions. Networks
// restored from a document have none until this is called.
func (net *Network) SetFuncs(activate, derivative Func) {
	net.activate = activate
	net.derivative = derivative
}

func (net *Network) SetActivation(a Activation) {
	net.SetFuncs(a.Activate, a.Derivative)
}

// InitLearn allocates the two delta buffers, each as wide as the widest
// layer. It must run before the first AdjustWeights call.
func (net *Network) InitLearn() {
	maxNeurons := net.maxWidth()
	net.curDeltas = make([]float64, maxNeurons)
	net.lastDeltas = make([]float64, maxNeurons)
}

// ForwardPassData propagates input through the network and copies the output
// layer's activated values, without its bias unit, into output.
func (net *Network) ForwardPassData(input, output []float64) error {
	if net.activate == nil {
		return ErrUninitializedFunctions
	}
	first, out := net.layers[0], net.outputLayer()
	if len(input) != len(first.neurons) {
		return shapeMismatch("input", len(input), len(first.neurons))
	}
	if len(output) != len(out.neurons) {
		return shapeMismatch("output", len(output), len(out.neurons))
	}

	copy(first.activatedNeurons, input)
	for i := 0; i+1 < len(net.layers); i++ {
		next := net.layers[i+1]
		net.layers[i].propagate(next)
		next.Activate(net.activate)
	}
	copy(output, out.activatedNeurons[:len(out.neurons)])
	return nil
}

// Forward is ForwardPassData with a freshly allocated output slice.
func (net *Network) Forward(input []float64) ([]float64, error) {
	output := make([]float64, net.OutputSize())
	if err := net.ForwardPassData(input, output); err != nil {
		return nil, err
	}
	return output, nil
}

// AdjustWeights runs one step of online backpropagation on a single sample.
// output receives the forward pass result computed before the update, and
// the returned loss is the mean squared error of that output against targets.
func (net *Network) AdjustWeights(input, targets, output []float64) (float64, error) {
	if net.activate == nil || net.derivative == nil {
		return 0, ErrUninitializedFunctions
	}
	if w := net.maxWidth(); len(net.lastDeltas) < w || len(net.curDeltas) < w {
		return 0, ErrUninitializedTrainingState
	}
	out := net.outputLayer()
	if len(targets) != len(out.neurons) {
		return 0, shapeMismatch("targets", len(targets), len(out.neurons))
	}
	if err := net.ForwardPassData(input, output); err != nil {
		return 0, err
	}

	for i, v := range out.neurons {
		net.lastDeltas[i] = (targets[i] - out.activatedNeurons[i]) * net.derivative(v)
	}

	for l := len(net.layers) - 2; l >= 0; l-- {
		layer := net.layers[l]
		grad := net.lastDeltas[:len(net.layers[l+1].neurons)]
		cur := net.curDeltas[:len(layer.neurons)]
		for n, a := range layer.activatedNeurons {
			row := layer.weights[n]
			// The delta must be read before the row is updated.
			delta := floats.Dot(grad, row)
			floats.AddScaled(row, net.LearningRatio*a, grad)
			// Bias units have no neuron and the input layer's deltas are never read.
			if n < len(cur) && l > 0 {
				cur[n] = delta * net.derivative(layer.neurons[n])
			}
		}
		net.curDeltas, net.lastDeltas = net.lastDeltas, net.curDeltas
	}

	var loss float64
	for i, t := range targets {
		d := t - output[i]
		loss += d * d
	}
	return loss / float64(len(targets)), nil
}

// TrainEpoch runs AdjustWeights on every sample in order and returns the mean
// loss. output is reused as scratch for each step.
func (net *Network) TrainEpoch(samples []Sample, output []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var total float64
	for i, s := range samples {
		loss, err := net.AdjustWeights(s.Input, s.Target, output)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		total += loss
	}
	return total / float64(len(samples)), nil
}

func (net *Network) Layers() []*Layer { return net.layers }

// Topology reports the layer sizes and bias flags the network was built from.
func (net *Network) Topology() []LayerSpec {
	specs := make([]LayerSpec, len(net.layers))
	for i, l := range net.layers {
		specs[i] = LayerSpec{Size: len(l.neurons), Bias: l.bias}
	}
	return specs
}

func (net *Network) InputSize() int { return len(net.layers[0].neurons) }

func (net *Network) OutputSize() int { return len(net.outputLayer().neurons) }

// String returns the name followed by every layer's neuron count,
// e.g. "xor [2 3 1]".
func (net *Network) String() string {
	sizes := make([]int, len(net.layers))
	for i, l := range net.layers {
		sizes[i] = l.NumOfInputNeurons()
	}
	return fmt.Sprintf("%s %v", net.Name, sizes)
}

func (net *Network) outputLayer() *Layer {
	return net.layers[len(net.layers)-1]
}

func (net *Network) maxWidth() int {
	w := 0
	for _, l := range net.layers {
		w = max(w, len(l.neurons))
	}
	return w
}
