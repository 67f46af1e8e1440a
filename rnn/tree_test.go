package rnn

import (
	"testing"

	"github.com/kkoreilly/gobptt"
	"github.com/stretchr/testify/require"
)

func newSingleNeuronTree() *RecurrentTree {
	return NewRecurrentTree(2, []gobptt.LayerDef{{
		NeuronCount: 1,
		Activation:  gobptt.Identity,
		InitWeights: gobptt.ConstantWeights(1),
	}})
}

func TestRecurrentTreeForward(t *testing.T) {
	tree := NewRecurrentTree(3, []gobptt.LayerDef{
		{NeuronCount: 2, Activation: gobptt.Identity, InitWeights: gobptt.ConstantWeights(1), InitBiases: gobptt.ConstantBiases(0.5)},
		{NeuronCount: 1, Activation: gobptt.Identity, InitWeights: gobptt.ConstantWeights(2)},
	})
	require.Equal(t, 3, tree.InputCount())
	require.Equal(t, 1, tree.StateSize())

	tree.ForwardPropagate([]float32{1, 2, 3}, 0)
	// each first layer neuron is 1+2+3+0.5, the second layer doubles their sum
	require.Equal(t, []float32{6.5, 6.5}, tree.LayerOutputs(0)[0])
	require.Equal(t, []float32{26}, tree.Outputs())

	tree.ForwardPropagate([]float32{0, 0, 0}, 1)
	require.Equal(t, []float32{0.5, 0.5}, tree.LayerOutputs(1)[0])
	// earlier steps are kept
	require.Equal(t, []float32{26}, tree.LayerOutputs(0)[1])
}

func TestRecurrentTreeGradientAveraging(t *testing.T) {
	tree := newSingleNeuronTree()
	tree.ForwardPropagate([]float32{1, 1}, 0)

	// only the first column of the consumer's weights belongs to this neuron
	tree.ComputeGradients([][]float32{{2, 9}}, []float32{3}, 0, false)
	require.Equal(t, []float32{6}, tree.NeuronGradients(0)[0])

	tree.ComputeGradients([][]float32{{4}}, []float32{1}, 0, true)
	require.Equal(t, []float32{5}, tree.NeuronGradients(0)[0])

	tree.ComputeGradients([][]float32{{4}}, []float32{1}, 0, false)
	require.Equal(t, []float32{4}, tree.NeuronGradients(0)[0])

	tree.ZeroGradients(0)
	require.Equal(t, []float32{0}, tree.NeuronGradients(0)[0])
}

func TestRecurrentTreeUpdate(t *testing.T) {
	tree := newSingleNeuronTree()
	inputs := []float32{1, -2}
	tree.ForwardPropagate(inputs, 0)
	tree.ComputeGradients([][]float32{{1}}, []float32{0.5}, 0, false)

	// the last step of a sequence is never updated
	tree.UpdateWeightsAndBiases(inputs, 0.1, 0, 1)
	require.Equal(t, []float32{1, 1}, tree.Layers[0].Weights[0])
	require.Equal(t, []float32{0}, tree.Layers[0].Biases)

	tree.UpdateWeightsAndBiases(inputs, 0.1, 0, 2)
	require.InDeltaSlice(t, []float32{1.05, 0.9}, tree.Layers[0].Weights[0], 1e-6)
	require.InDeltaSlice(t, []float32{0.05}, tree.Layers[0].Biases, 1e-6)
}

func TestRecurrentTreeNeedsForward(t *testing.T) {
	tree := newSingleNeuronTree()
	require.Panics(t, func() {
		tree.ComputeGradients([][]float32{{1}}, []float32{1}, 0, false)
	})
	require.Panics(t, func() {
		NewRecurrentTree(2, nil)
	})
}
