package rnn

import (
	"fmt"

	"github.com/kkoreilly/gobptt"
)

// GradientStep selects which step's output tree gradient is backpropagated
// into the recurrent tree gradient of an earlier step s.
type GradientStep int

const (
	// SameStep uses the output tree gradient of step s itself
	SameStep GradientStep = iota

	// NextStep uses the output tree gradient of step s+1, the step whose
	// combined input holds the state made at s
	NextStep
)

func (g GradientStep) String() string {
	switch g {
	case SameStep:
		return "same"
	case NextStep:
		return "next"
	}
	return fmt.Sprintf("GradientStep(%d)", int(g))
}

// ParseGradientStep returns the GradientStep with the given name (see GradientStep.String)
func ParseGradientStep(name string) (GradientStep, error) {
	for _, g := range []GradientStep{SameStep, NextStep} {
		if g.String() == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gradient step %q", name)
}

// RecurrentLayer carries a state across the steps of a sequence. At every step
// the state and the external inputs are concatenated (state first) into the
// combined input of both the recurrent tree and the output tree.
//
// A sequence is processed by Reset, ForwardPropagate for steps 0, 1, ... in order,
// then ComputeGradients and finally UpdateWeights and UpdateBiases.
type RecurrentLayer struct {
	State      []float32          // the state fed into the next step
	Tree       *RecurrentTree     // produces the next state from the combined input
	OutputTree *gobptt.DenseLayer // produces the visible outputs from the combined input

	// StateGradient picks the output tree gradient used for the tree gradients
	// of every step but the last. The zero value is SameStep.
	StateGradient GradientStep

	inputCount int
	combined   []float32 // scratch for state ++ inputs

	steps     int // steps forward propagated since the last Reset
	gradSteps int // sequence length of the last ComputeGradients, or 0

	sequenceInputs  [][]float32 // [step] external inputs
	prevStates      [][]float32 // [step] state at the start of the step
	outputTreePre   [][]float32 // [step] output tree net inputs
	outputGradients [][]float32 // [step] output tree gradients
}

// NewRecurrentLayer creates a recurrent layer taking inputCount external inputs.
// The state size is the neuron count of the last tree layer.
func NewRecurrentLayer(inputCount int, tree []gobptt.LayerDef, outputTree gobptt.LayerDef) *RecurrentLayer {
	gobptt.MustAtLeast("NewRecurrentLayer", len(tree), 1)
	stateSize := tree[len(tree)-1].NeuronCount
	combined := stateSize + inputCount
	return &RecurrentLayer{
		State:      make([]float32, stateSize),
		Tree:       NewRecurrentTree(combined, tree),
		OutputTree: outputTree.Build(combined),
		inputCount: inputCount,
		combined:   make([]float32, combined),
	}
}

// InputCount returns the number of external inputs per step
func (l *RecurrentLayer) InputCount() int {
	return l.inputCount
}

// StateSize returns the size of the state
func (l *RecurrentLayer) StateSize() int {
	return len(l.State)
}

// OutputCount returns the number of outputs per step
func (l *RecurrentLayer) OutputCount() int {
	return l.OutputTree.NeuronCount()
}

// Outputs returns the output tree's outputs from the last ForwardPropagate
func (l *RecurrentLayer) Outputs() []float32 {
	return l.OutputTree.Outputs
}

// OutputGradients returns the output tree gradients computed for the given step
func (l *RecurrentLayer) OutputGradients(step int) []float32 {
	gobptt.MustIndex("RecurrentLayer.OutputGradients", step, l.gradSteps)
	return l.outputGradients[step]
}

// Reset zeroes the state and starts a new sequence
func (l *RecurrentLayer) Reset() {
	clear(l.State)
	l.steps = 0
	l.gradSteps = 0
}

// ForwardPropagate runs one step. Steps of a sequence must be given in order starting at 0.
func (l *RecurrentLayer) ForwardPropagate(inputs []float32, step int) {
	gobptt.MustLen("RecurrentLayer.ForwardPropagate", len(inputs), l.inputCount)
	gobptt.MustLen("RecurrentLayer.ForwardPropagate step", step, l.steps)

	l.prevStates = growRows(l.prevStates, step, len(l.State))
	l.sequenceInputs = growRows(l.sequenceInputs, step, l.inputCount)
	l.outputTreePre = growRows(l.outputTreePre, step, l.OutputCount())
	copy(l.prevStates[step], l.State)
	copy(l.sequenceInputs[step], inputs)

	l.combine(step)
	l.OutputTree.ForwardPropagate(l.combined)
	copy(l.outputTreePre[step], l.OutputTree.OutputsBeforeActivation)
	l.Tree.ForwardPropagate(l.combined, step)
	copy(l.State, l.Tree.Outputs())

	l.steps++
	l.gradSteps = 0
}

// combine fills the combined scratch with the state and inputs recorded for step
func (l *RecurrentLayer) combine(step int) {
	ss := len(l.State)
	copy(l.combined[:ss], l.prevStates[step])
	copy(l.combined[ss:], l.sequenceInputs[step])
}

// ComputeGradients runs backpropagation through time over the last
// sequenceLen steps. outputWeights and outputGradients[step] come from the
// layer consuming this layer's outputs at each step; a zero row means that step
// has no target.
//
// The tree gradient for step s is the average of two backpropagations through
// state columns: the output tree's, with its gradient at step s (or s+1 with
// NextStep), and the first tree layer's, with the tree gradient at step s+1.
// The state of the final step is never consumed and gets a zero gradient.
func (l *RecurrentLayer) ComputeGradients(outputWeights [][]float32, outputGradients [][]float32, sequenceLen int) {
	gobptt.MustLen("RecurrentLayer.ComputeGradients", sequenceLen, l.steps)
	gobptt.MustLen("RecurrentLayer.ComputeGradients", len(outputGradients), sequenceLen)
	if sequenceLen == 0 {
		return
	}

	l.outputGradients = growRows(l.outputGradients, sequenceLen-1, l.OutputCount())
	for step := sequenceLen - 1; step >= 0; step-- {
		l.OutputTree.GradientsFor(l.outputGradients[step], l.outputTreePre[step], outputWeights, outputGradients[step])
		if step == sequenceLen-1 {
			l.Tree.ZeroGradients(step)
			continue
		}
		consumer := l.outputGradients[step]
		if l.StateGradient == NextStep {
			consumer = l.outputGradients[step+1]
		}
		l.Tree.ComputeGradients(l.OutputTree.Weights, consumer, step, false)
		next := l.Tree.NeuronGradients(step + 1)
		l.Tree.ComputeGradients(l.Tree.Layers[0].Weights, next[0], step, true)
	}
	l.gradSteps = sequenceLen
}

// UpdateWeights applies the gradients from ComputeGradients to the output tree
// and recurrent tree weights (and the recurrent tree biases) for every step.
func (l *RecurrentLayer) UpdateWeights(learningRate float32, sequenceLen int) {
	gobptt.MustLen("RecurrentLayer.UpdateWeights", sequenceLen, l.gradSteps)
	for step := range sequenceLen {
		l.combine(step)
		l.OutputTree.UpdateWeightsWith(l.outputGradients[step], l.combined, learningRate)
		l.Tree.UpdateWeightsAndBiases(l.combined, learningRate, step, sequenceLen)
	}
}

// UpdateBiases applies the gradients from ComputeGradients to the output tree biases
func (l *RecurrentLayer) UpdateBiases(learningRate float32, sequenceLen int) {
	gobptt.MustLen("RecurrentLayer.UpdateBiases", sequenceLen, l.gradSteps)
	for step := range sequenceLen {
		l.OutputTree.UpdateBiasesWith(l.outputGradients[step], learningRate)
	}
}
