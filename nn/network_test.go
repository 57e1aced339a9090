package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func newTestNetwork(t *testing.T, a Activation, topology ...LayerSpec) *Network {
	t.Helper()
	net, err := NewNetwork(Config{
		Name:       "test",
		Topology:   topology,
		Activate:   a.Activate,
		Derivative: a.Derivative,
		Source:     rand.NewSource(42),
	})
	require.NoError(t, err)
	return net
}

func copyWeights(net *Network) [][][]float64 {
	out := make([][][]float64, len(net.Layers()))
	for i, l := range net.Layers() {
		out[i] = make([][]float64, len(l.Weights()))
		for j, row := range l.Weights() {
			out[i][j] = append([]float64(nil), row...)
		}
	}
	return out
}

func TestNewNetworkTopology(t *testing.T) {
	net := newTestNetwork(t, Sigmoid,
		LayerSpec{Size: 2, Bias: true},
		LayerSpec{Size: 3, Bias: true},
		LayerSpec{Size: 2},
	)

	layers := net.Layers()
	require.Len(t, layers, 3)
	assert.Len(t, layers[0].Weights(), 3)
	assert.Len(t, layers[0].Weights()[0], 3)
	assert.Len(t, layers[1].Weights(), 4)
	assert.Len(t, layers[1].Weights()[0], 2)
	assert.Len(t, layers[2].Weights(), 2)
	assert.Empty(t, layers[2].Weights()[0])

	assert.Equal(t, 2, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())
	assert.Equal(t, []LayerSpec{{2, true}, {3, true}, {2, false}}, net.Topology())
	assert.Equal(t, "test [2 3 2]", net.String())
}

func TestNewNetworkRejectsEmptyTopology(t *testing.T) {
	_, err := NewNetwork(Config{})
	assert.ErrorIs(t, err, ErrEmptyTopology)

	_, err = NewNetwork(Config{Topology: []LayerSpec{{Size: 2}, {Size: 0}}})
	assert.ErrorIs(t, err, ErrEmptyTopology)
}

func TestForwardPassOutputLength(t *testing.T) {
	topologies := [][]LayerSpec{
		{{Size: 1}},
		{{Size: 3, Bias: true}, {Size: 1, Bias: true}},
		{{Size: 4}, {Size: 7, Bias: true}, {Size: 2}, {Size: 5, Bias: true}},
	}
	for _, topo := range topologies {
		net := newTestNetwork(t, Tanh, topo...)
		out, err := net.Forward(make([]float64, topo[0].Size))
		require.NoError(t, err)
		assert.Len(t, out, topo[len(topo)-1].Size)
	}
}

func TestForwardPassIdentityIsInputTimesWeights(t *testing.T) {
	net := newTestNetwork(t, Identity, LayerSpec{Size: 2}, LayerSpec{Size: 2})
	input := []float64{0.2, 0.8}
	output := make([]float64, 2)

	require.NoError(t, net.ForwardPassData(input, output))

	var want mat.VecDense
	want.MulVec(net.Layers()[0].WeightMatrix().T(), mat.NewVecDense(2, input))
	assert.InDeltaSlice(t, want.RawVector().Data, output, 1e-15)

	w := net.Layers()[0].Weights()
	for j := range output {
		assert.InDelta(t, input[0]*w[0][j]+input[1]*w[1][j], output[j], 1e-15)
	}
}

func TestForwardPassUsesBiasUnit(t *testing.T) {
	net := newTestNetwork(t, Identity, LayerSpec{Size: 1, Bias: true}, LayerSpec{Size: 1})
	w := net.Layers()[0].Weights()

	out, err := net.Forward([]float64{0})
	require.NoError(t, err)
	assert.InDelta(t, w[1][0], out[0], 1e-15)
	assert.Equal(t, 1.0, net.Layers()[0].ActivatedNeurons()[1])
}

func TestForwardPassBeforeSetFuncs(t *testing.T) {
	net, err := NewNetwork(Config{Topology: []LayerSpec{{Size: 2}, {Size: 1}}})
	require.NoError(t, err)

	err = net.ForwardPassData([]float64{1, 2}, make([]float64, 1))
	assert.ErrorIs(t, err, ErrUninitializedFunctions)

	net.SetActivation(Sigmoid)
	assert.NoError(t, net.ForwardPassData([]float64{1, 2}, make([]float64, 1)))
}

func TestForwardPassShapeMismatch(t *testing.T) {
	net := newTestNetwork(t, Sigmoid, LayerSpec{Size: 2, Bias: true}, LayerSpec{Size: 3})

	err := net.ForwardPassData([]float64{1, 2, 3}, make([]float64, 3))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = net.ForwardPassData([]float64{1, 2}, make([]float64, 4))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAdjustWeightsBeforeInitLearn(t *testing.T) {
	net := newTestNetwork(t, Sigmoid, LayerSpec{Size: 2}, LayerSpec{Size: 2})

	_, err := net.AdjustWeights([]float64{1, 0}, []float64{0, 1}, make([]float64, 2))
	assert.ErrorIs(t, err, ErrUninitializedTrainingState)

	net.InitLearn()
	_, err = net.AdjustWeights([]float64{1, 0}, []float64{0, 1}, make([]float64, 2))
	assert.NoError(t, err)
}

func TestAdjustWeightsWithoutDerivative(t *testing.T) {
	net := newTestNetwork(t, Sigmoid, LayerSpec{Size: 2}, LayerSpec{Size: 2})
	net.SetFuncs(Sigmoid.Activate, nil)
	net.InitLearn()

	_, err := net.AdjustWeights([]float64{1, 0}, []float64{0, 1}, make([]float64, 2))
	assert.ErrorIs(t, err, ErrUninitializedFunctions)
}

func TestAdjustWeightsTargetShapeMismatch(t *testing.T) {
	net := newTestNetwork(t, Sigmoid, LayerSpec{Size: 2}, LayerSpec{Size: 2})
	net.InitLearn()

	_, err := net.AdjustWeights([]float64{1, 0}, []float64{0, 1, 1}, make([]float64, 2))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAdjustWeightsLossIsMeanSquaredError(t *testing.T) {
	net := newTestNetwork(t, Sigmoid,
		LayerSpec{Size: 3, Bias: true},
		LayerSpec{Size: 4, Bias: true},
		LayerSpec{Size: 2},
	)
	net.LearningRatio = 0.5
	net.InitLearn()

	input := []float64{0.1, -0.4, 0.9}
	targets := []float64{0.25, 0.75}
	output := make([]float64, 2)
	for i := 0; i < 5; i++ {
		loss, err := net.AdjustWeights(input, targets, output)
		require.NoError(t, err)

		var want float64
		for j := range targets {
			d := targets[j] - output[j]
			want += d * d
		}
		want /= float64(len(targets))
		assert.GreaterOrEqual(t, loss, 0.0)
		assert.InDelta(t, want, loss, 1e-15)
	}
}

func TestAdjustWeightsZeroLearningRatioKeepsWeights(t *testing.T) {
	net := newTestNetwork(t, Identity, LayerSpec{Size: 2}, LayerSpec{Size: 2})
	net.LearningRatio = 0
	net.InitLearn()
	before := copyWeights(net)

	input := []float64{0.2, 0.8}
	output := make([]float64, 2)
	var first float64
	for i := 0; i < 3; i++ {
		loss, err := net.AdjustWeights(input, []float64{1, 0}, output)
		require.NoError(t, err)
		if i == 0 {
			first = loss
		}
		assert.Equal(t, first, loss)
	}
	assert.Equal(t, before, copyWeights(net))
}

func TestAdjustWeightsDecreasesLoss(t *testing.T) {
	net := newTestNetwork(t, Sigmoid,
		LayerSpec{Size: 2, Bias: true},
		LayerSpec{Size: 3, Bias: true},
		LayerSpec{Size: 2},
	)
	net.LearningRatio = 0.3
	net.InitLearn()

	input := []float64{0.2, 0.8}
	targets := []float64{0.1, 0.9}
	output := make([]float64, 2)

	first, err := net.AdjustWeights(input, targets, output)
	require.NoError(t, err)
	second, err := net.AdjustWeights(input, targets, output)
	require.NoError(t, err)
	assert.Less(t, second, first)
}

func TestAdjustWeightsSingleStepByHand(t *testing.T) {
	// 1 input with bias -> 1 hidden -> 1 output, identity activation.
	net := &Network{
		LearningRatio: 0.1,
		layers: []*Layer{
			{
				neurons:          []float64{0},
				activatedNeurons: []float64{0, 1},
				weights:          [][]float64{{0.5}, {0.25}},
				bias:             true,
			},
			{
				neurons:          []float64{0},
				activatedNeurons: []float64{0},
				weights:          [][]float64{{2}},
			},
			{
				neurons:          []float64{0},
				activatedNeurons: []float64{0},
				weights:          [][]float64{{}},
			},
		},
	}
	net.SetActivation(Identity)
	net.InitLearn()

	output := make([]float64, 1)
	loss, err := net.AdjustWeights([]float64{1}, []float64{2}, output)
	require.NoError(t, err)

	// hidden = 1*0.5 + 1*0.25 = 0.75, out = 1.5, error = 0.5
	assert.InDelta(t, 1.5, output[0], 1e-12)
	assert.InDelta(t, 0.25, loss, 1e-12)

	// output delta 0.5; hidden weight += 0.1 * 0.75 * 0.5
	assert.InDelta(t, 2.0375, net.layers[1].weights[0][0], 1e-12)
	// hidden delta uses the old weight: 0.5 * 2 = 1
	assert.InDelta(t, 0.6, net.layers[0].weights[0][0], 1e-12)
	// the bias row trains like any other row
	assert.InDelta(t, 0.35, net.layers[0].weights[1][0], 1e-12)
}

func TestAdjustWeightsIgnoresStaleDeltas(t *testing.T) {
	build := func() *Network {
		return newTestNetwork(t, Tanh,
			LayerSpec{Size: 2, Bias: true},
			LayerSpec{Size: 1, Bias: true},
			LayerSpec{Size: 6, Bias: true},
			LayerSpec{Size: 3},
		)
	}
	clean, dirty := build(), build()
	clean.LearningRatio, dirty.LearningRatio = 0.2, 0.2
	clean.InitLearn()
	dirty.InitLearn()
	for i := range dirty.curDeltas {
		dirty.curDeltas[i] = 1e6
		dirty.lastDeltas[i] = -1e6
	}

	input, targets := []float64{0.3, -0.7}, []float64{0.1, 0.2, 0.3}
	out1, out2 := make([]float64, 3), make([]float64, 3)
	for i := 0; i < 3; i++ {
		l1, err := clean.AdjustWeights(input, targets, out1)
		require.NoError(t, err)
		l2, err := dirty.AdjustWeights(input, targets, out2)
		require.NoError(t, err)
		assert.Equal(t, l1, l2)
	}
	assert.Equal(t, copyWeights(clean), copyWeights(dirty))
}

func TestAdjustWeightsKeepsBiasUnits(t *testing.T) {
	net := newTestNetwork(t, ReLU,
		LayerSpec{Size: 2, Bias: true},
		LayerSpec{Size: 2, Bias: true},
		LayerSpec{Size: 1, Bias: true},
	)
	net.LearningRatio = 0.1
	net.InitLearn()

	for i := 0; i < 10; i++ {
		_, err := net.AdjustWeights([]float64{1, -1}, []float64{0.5}, make([]float64, 1))
		require.NoError(t, err)
		for _, l := range net.Layers() {
			assert.Equal(t, 1.0, l.ActivatedNeurons()[l.NumOfInputNeurons()])
		}
	}
}

func TestTrainEpoch(t *testing.T) {
	net := newTestNetwork(t, Sigmoid,
		LayerSpec{Size: 2, Bias: true},
		LayerSpec{Size: 4, Bias: true},
		LayerSpec{Size: 1},
	)
	net.LearningRatio = 0.5
	net.InitLearn()

	samples := []Sample{
		{Input: []float64{0, 0}, Target: []float64{0.2}},
		{Input: []float64{1, 1}, Target: []float64{0.8}},
	}
	output := make([]float64, 1)
	first, err := net.TrainEpoch(samples, output)
	require.NoError(t, err)
	var last float64
	for i := 0; i < 200; i++ {
		last, err = net.TrainEpoch(samples, output)
		require.NoError(t, err)
	}
	assert.Less(t, last, first)

	_, err = net.TrainEpoch([]Sample{{Input: []float64{1}, Target: []float64{1}}}, output)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
