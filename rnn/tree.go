// Package rnn implements recurrent networks on top of the gobptt dense and
// output layers, trained with backpropagation through time.
//
// A recurrent layer combines the persistent state with the external input at
// every step. The combined vector, state first, feeds both a recurrent tree
// (a small feedforward stack producing the next state) and an output tree
// (a dense layer producing the visible output of that step).
package rnn

import "github.com/kkoreilly/gobptt"

// RecurrentTree is the feedforward stack that maps the combined input of a step
// to the next state. It keeps per-step snapshots so that a whole sequence can
// be replayed backwards.
type RecurrentTree struct {
	Layers []*gobptt.DenseLayer // the layers, closest to the combined input first

	layerOutputsByStep    [][][]float32 // [step][layer] outputs
	layerPreByStep        [][][]float32 // [step][layer] net inputs
	neuronGradientsByStep [][][]float32 // [step][layer] gradients
	widths                []int         // neuron count of each layer
	fresh                 [][]float32   // gradients from the current ComputeGradients call
}

// NewRecurrentTree builds a recurrent tree taking inputCount (state size plus
// external input count) inputs. The last layer's neuron count is the state size.
func NewRecurrentTree(inputCount int, defs []gobptt.LayerDef) *RecurrentTree {
	gobptt.MustAtLeast("NewRecurrentTree", len(defs), 1)
	t := &RecurrentTree{
		Layers: make([]*gobptt.DenseLayer, len(defs)),
		widths: make([]int, len(defs)),
		fresh:  make([][]float32, len(defs)),
	}
	numInputs := inputCount
	for i, def := range defs {
		t.Layers[i] = def.Build(numInputs)
		t.widths[i] = def.NeuronCount
		t.fresh[i] = make([]float32, def.NeuronCount)
		numInputs = def.NeuronCount
	}
	return t
}

// InputCount returns the size of the combined input
func (t *RecurrentTree) InputCount() int {
	return t.Layers[0].InputCount()
}

// StateSize returns the size of the state produced by the tree
func (t *RecurrentTree) StateSize() int {
	return t.Layers[len(t.Layers)-1].NeuronCount()
}

// Outputs returns the new state from the last forward pass
func (t *RecurrentTree) Outputs() []float32 {
	return t.Layers[len(t.Layers)-1].Outputs
}

// LayerOutputs returns the outputs of every layer recorded at the given step
func (t *RecurrentTree) LayerOutputs(step int) [][]float32 {
	gobptt.MustIndex("RecurrentTree.LayerOutputs", step, len(t.layerOutputsByStep))
	return t.layerOutputsByStep[step]
}

// NeuronGradients returns the gradients of every layer computed for the given step
func (t *RecurrentTree) NeuronGradients(step int) [][]float32 {
	gobptt.MustIndex("RecurrentTree.NeuronGradients", step, len(t.neuronGradientsByStep))
	return t.neuronGradientsByStep[step]
}

// ForwardPropagate runs the combined inputs through every layer and records
// each layer's outputs and net inputs for the given step.
func (t *RecurrentTree) ForwardPropagate(inputs []float32, step int) {
	t.layerOutputsByStep = growLayerRows(t.layerOutputsByStep, step, t.widths)
	t.layerPreByStep = growLayerRows(t.layerPreByStep, step, t.widths)
	in := inputs
	for i, l := range t.Layers {
		l.ForwardPropagate(in)
		copy(t.layerOutputsByStep[step][i], l.Outputs)
		copy(t.layerPreByStep[step][i], l.OutputsBeforeActivation)
		in = l.Outputs
	}
}

// ComputeGradients walks the layers backwards starting from the given weights
// and gradients of whatever consumes the tree's output at step, storing the
// result for that step. With accumulate, each new gradient is averaged with
// the one already stored for the step instead of replacing it.
func (t *RecurrentTree) ComputeGradients(outputWeights [][]float32, outputGradients []float32, step int, accumulate bool) {
	gobptt.MustIndex("RecurrentTree.ComputeGradients", step, len(t.layerPreByStep))
	t.neuronGradientsByStep = growLayerRows(t.neuronGradientsByStep, step, t.widths)

	w, g := outputWeights, outputGradients
	for i := len(t.Layers) - 1; i >= 0; i-- {
		l := t.Layers[i]
		l.GradientsFor(t.fresh[i], t.layerPreByStep[step][i], w, g)
		w, g = l.Weights, t.fresh[i]
	}

	stored := t.neuronGradientsByStep[step]
	for i, fresh := range t.fresh {
		if !accumulate {
			copy(stored[i], fresh)
			continue
		}
		for n, v := range fresh {
			stored[i][n] = (stored[i][n] + v) / 2
		}
	}
}

// ZeroGradients sets every gradient stored for the given step to zero
func (t *RecurrentTree) ZeroGradients(step int) {
	t.neuronGradientsByStep = growLayerRows(t.neuronGradientsByStep, step, t.widths)
	for _, g := range t.neuronGradientsByStep[step] {
		clear(g)
	}
}

// UpdateWeightsAndBiases applies the gradients stored for step, using inputs as
// the combined input of that step and the recorded outputs for inner layers.
// The state produced at the last step of a sequence has no consumer, so that step is skipped.
func (t *RecurrentTree) UpdateWeightsAndBiases(inputs []float32, learningRate float32, step, sequenceLen int) {
	if step == sequenceLen-1 {
		return
	}
	gobptt.MustIndex("RecurrentTree.UpdateWeightsAndBiases", step, len(t.neuronGradientsByStep))
	grads := t.neuronGradientsByStep[step]
	for i := len(t.Layers) - 1; i >= 0; i-- {
		in := inputs
		if i > 0 {
			in = t.layerOutputsByStep[step][i-1]
		}
		l := t.Layers[i]
		l.UpdateWeightsWith(grads[i], in, learningRate)
		l.UpdateBiasesWith(grads[i], learningRate)
	}
}
