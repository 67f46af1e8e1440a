package rnn

import (
	"testing"

	"github.com/kkoreilly/gobptt"
	"github.com/stretchr/testify/require"
)

func TestStateGradientStep(t *testing.T) {
	identity := gobptt.LayerDef{NeuronCount: 1, Activation: gobptt.Identity}
	for _, c := range []struct {
		step GradientStep
		want float32
	}{
		// avg(2 * 1, 0): output tree weight on the state times this step's gradient
		{SameStep, 1},
		// avg(2 * 10, 0): the same weight times the next step's gradient
		{NextStep, 10},
	} {
		l := NewRecurrentLayer(1, []gobptt.LayerDef{identity}, identity)
		l.StateGradient = c.step
		l.Tree.Layers[0].Weights[0] = []float32{0, 1}
		l.OutputTree.Weights[0] = []float32{2, 0}
		l.ForwardPropagate([]float32{1}, 0)
		l.ForwardPropagate([]float32{2}, 1)

		l.ComputeGradients([][]float32{{1}}, [][]float32{{1}, {10}}, 2)
		require.Equal(t, []float32{1}, l.OutputGradients(0), c.step.String())
		require.Equal(t, []float32{10}, l.OutputGradients(1), c.step.String())
		require.Equal(t, [][]float32{{0}}, l.Tree.NeuronGradients(1), c.step.String())
		require.Equal(t, [][]float32{{c.want}}, l.Tree.NeuronGradients(0), c.step.String())
	}
}

// newTwoLayerTreeLayer returns a layer with one input, a state of size 1 made
// by a 2-1 identity tree, and one identity output. Combined inputs are [state, x].
func newTwoLayerTreeLayer() *RecurrentLayer {
	tree := []gobptt.LayerDef{
		{NeuronCount: 2, Activation: gobptt.Identity},
		{NeuronCount: 1, Activation: gobptt.Identity},
	}
	l := NewRecurrentLayer(1, tree, gobptt.LayerDef{NeuronCount: 1, Activation: gobptt.Identity})
	l.Tree.Layers[0].Weights = [][]float32{{1, 2}, {0.25, -1}}
	l.Tree.Layers[1].Weights = [][]float32{{1, -2}}
	l.OutputTree.Weights = [][]float32{{3, 1}}
	return l
}

func TestTwoLayerTreeThroughTime(t *testing.T) {
	l := newTwoLayerTreeLayer()
	for step, x := range []float32{1, 2, -1} {
		l.ForwardPropagate([]float32{x}, step)
	}

	// step 0: combined [0, 1], first layer [2, -1], state 2 + 2 = 4, output 1
	// step 1: combined [4, 2], first layer [8, -1], state 8 + 2 = 10, output 14
	// step 2: combined [10, -1], first layer [8, 3.5], state 8 - 7 = 1, output 29
	require.Equal(t, []float32{29}, l.Outputs())
	require.Equal(t, []float32{1}, l.State)
	require.Equal(t, [][]float32{{2, -1}, {4}}, l.Tree.LayerOutputs(0))
	require.Equal(t, [][]float32{{8, -1}, {10}}, l.Tree.LayerOutputs(1))
	require.Equal(t, [][]float32{{8, 3.5}, {1}}, l.Tree.LayerOutputs(2))

	// one downstream neuron with weight 1, so the output tree gradients are the
	// downstream gradients themselves
	l.ComputeGradients([][]float32{{1}}, [][]float32{{0.5}, {1}, {-1}}, 3)
	for step, want := range []float32{0.5, 1, -1} {
		require.Equal(t, []float32{want}, l.OutputGradients(step))
	}

	// step 2 has no consumer
	require.Equal(t, [][]float32{{0, 0}, {0}}, l.Tree.NeuronGradients(2))

	// step 1:
	// through the output tree with gradient 1: state 3*1 = 3, first layer [1*3, -2*3] = [3, -6]
	// through the first tree layer with the zero gradients of step 2: all zero
	// average: state 1.5, first layer [1.5, -3]
	require.Equal(t, [][]float32{{1.5, -3}, {1.5}}, l.Tree.NeuronGradients(1))

	// step 0:
	// through the output tree with gradient 0.5: state 1.5, first layer [1.5, -3]
	// through the first tree layer with the step 1 gradients [1.5, -3]:
	//   state 1*1.5 + 0.25*-3 = 0.75, first layer [0.75, -1.5]
	// average: state 1.125, first layer [1.125, -2.25]
	require.Equal(t, [][]float32{{1.125, -2.25}, {1.125}}, l.Tree.NeuronGradients(0))

	l.UpdateWeights(0.5, 3)
	l.UpdateBiases(0.5, 3)

	// output tree, every step: w += 0.5 * g * combined, b += 0.5 * g
	//   w[0] = 3 + 0.5*(0.5*0 + 1*4 + -1*10) = 0
	//   w[1] = 1 + 0.5*(0.5*1 + 1*2 + -1*-1) = 2.75
	//   b = 0.5*(0.5 + 1 - 1) = 0.25
	require.Equal(t, [][]float32{{0, 2.75}}, l.OutputTree.Weights)
	require.Equal(t, []float32{0.25}, l.OutputTree.Biases)

	// tree, steps 0 and 1 only; the first layer sees the combined inputs
	//   neuron 0: [1, 2] + 0.5*(1.125*[0, 1] + 1.5*[4, 2]) = [4, 4.0625]
	//   neuron 1: [0.25, -1] + 0.5*(-2.25*[0, 1] + -3*[4, 2]) = [-5.75, -5.125]
	//   biases: 0.5*(1.125 + 1.5) = 1.3125, 0.5*(-2.25 - 3) = -2.625
	require.Equal(t, [][]float32{{4, 4.0625}, {-5.75, -5.125}}, l.Tree.Layers[0].Weights)
	require.Equal(t, []float32{1.3125, -2.625}, l.Tree.Layers[0].Biases)

	// the second layer sees the first layer's outputs recorded at each step
	//   [1, -2] + 0.5*(1.125*[2, -1] + 1.5*[8, -1]) = [8.125, -3.3125]
	//   bias: 0.5*(1.125 + 1.5) = 1.3125
	require.Equal(t, [][]float32{{8.125, -3.3125}}, l.Tree.Layers[1].Weights)
	require.Equal(t, []float32{1.3125}, l.Tree.Layers[1].Biases)
}

func TestTwoLayerTreeNextStep(t *testing.T) {
	l := newTwoLayerTreeLayer()
	l.StateGradient = NextStep
	for step, x := range []float32{1, 2, -1} {
		l.ForwardPropagate([]float32{x}, step)
	}
	l.ComputeGradients([][]float32{{1}}, [][]float32{{0.5}, {1}, {-1}}, 3)

	require.Equal(t, [][]float32{{0, 0}, {0}}, l.Tree.NeuronGradients(2))

	// step 1 takes the output tree gradient of step 2:
	// state 3*-1 = -3, first layer [-3, 6], averaged with zero
	require.Equal(t, [][]float32{{-1.5, 3}, {-1.5}}, l.Tree.NeuronGradients(1))

	// step 0 takes the output tree gradient of step 1: state 3, first layer [3, -6]
	// through the first tree layer: state 1*-1.5 + 0.25*3 = -0.75, first layer [-0.75, 1.5]
	require.Equal(t, [][]float32{{1.125, -2.25}, {1.125}}, l.Tree.NeuronGradients(0))
}

func TestParseGradientStep(t *testing.T) {
	for _, g := range []GradientStep{SameStep, NextStep} {
		got, err := ParseGradientStep(g.String())
		require.NoError(t, err)
		require.Equal(t, g, got)
	}
	_, err := ParseGradientStep("previous")
	require.Error(t, err)
	require.Equal(t, "GradientStep(7)", GradientStep(7).String())
}
