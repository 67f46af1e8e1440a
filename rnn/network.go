package rnn

import "github.com/kkoreilly/gobptt"

// RecurrentNetwork is a recurrent layer followed by an output layer that is
// applied to the recurrent layer's outputs at every step.
type RecurrentNetwork struct {
	LearningRate float32             // the rate used by Train
	Layer        *RecurrentLayer     // the recurrent layer
	Output       *gobptt.OutputLayer // the output layer applied at every step

	// Outputs[step] is the output layer's outputs at each step of the last sequence.
	// Rows beyond the last sequence's length are stale.
	Outputs [][]float32

	// RecurrentLayerOutputs[step] is the recurrent layer's outputs at each step
	// of the last sequence, which are the output layer's inputs.
	RecurrentLayerOutputs [][]float32

	outputGradients [][]float32 // [step] output layer gradients, zero where there is no target
}

// NewRecurrentNetwork connects the given recurrent layer to an output layer
// built from output.
func NewRecurrentNetwork(layer *RecurrentLayer, output gobptt.OutputDef, learningRate float32) *RecurrentNetwork {
	return &RecurrentNetwork{
		LearningRate: learningRate,
		Layer:        layer,
		Output:       output.Build(layer.OutputCount()),
	}
}

// InputCount returns the number of inputs per step
func (n *RecurrentNetwork) InputCount() int {
	return n.Layer.InputCount()
}

// OutputCount returns the number of outputs per step
func (n *RecurrentNetwork) OutputCount() int {
	return n.Output.NeuronCount()
}

// ForwardPropagate resets the state and runs the whole sequence, filling
// Outputs and RecurrentLayerOutputs. expected may be nil, and so may any of its
// rows; steps with a target get their costs and output gradients computed and
// the rest get zero gradients. It returns the total cost over every target.
func (n *RecurrentNetwork) ForwardPropagate(sequence, expected [][]float32) float32 {
	if expected != nil {
		gobptt.MustLen("RecurrentNetwork.ForwardPropagate", len(expected), len(sequence))
	}
	n.Layer.Reset()
	if len(sequence) == 0 {
		return 0
	}
	last := len(sequence) - 1
	n.Outputs = growRows(n.Outputs, last, n.OutputCount())
	n.RecurrentLayerOutputs = growRows(n.RecurrentLayerOutputs, last, n.Layer.OutputCount())
	n.outputGradients = growRows(n.outputGradients, last, n.OutputCount())

	var total float32
	for step, inputs := range sequence {
		n.Layer.ForwardPropagate(inputs, step)
		copy(n.RecurrentLayerOutputs[step], n.Layer.Outputs())
		n.Output.Compute(n.RecurrentLayerOutputs[step])
		copy(n.Outputs[step], n.Output.Outputs)

		if expected == nil || expected[step] == nil {
			clear(n.outputGradients[step])
			continue
		}
		n.Output.ComputeCosts(expected[step])
		n.Output.ComputeGradients()
		total += n.Output.TotalCost()
		copy(n.outputGradients[step], n.Output.NeuronGradients)
	}
	return total
}

// TrainOneSequence trains on one sequence with backpropagation through time and
// returns the mean cost, the total cost divided by output count times sequence
// length. expected[step] may be nil for steps without a target.
func (n *RecurrentNetwork) TrainOneSequence(sequence, expected [][]float32, learningRate float32) float32 {
	gobptt.MustLen("RecurrentNetwork.TrainOneSequence", len(expected), len(sequence))
	seqLen := len(sequence)
	if seqLen == 0 {
		return 0
	}
	total := n.ForwardPropagate(sequence, expected)

	grads := n.outputGradients[:seqLen]
	n.Layer.ComputeGradients(n.Output.Weights, grads, seqLen)

	for step, g := range grads {
		n.Output.UpdateWeightsWith(g, n.RecurrentLayerOutputs[step], learningRate)
	}
	n.Layer.UpdateWeights(learningRate, seqLen)
	n.Layer.UpdateBiases(learningRate, seqLen)

	return total / float32(n.OutputCount()*seqLen)
}

// Train is TrainOneSequence with the network's LearningRate
func (n *RecurrentNetwork) Train(sequence, expected [][]float32) float32 {
	return n.TrainOneSequence(sequence, expected, n.LearningRate)
}

// Predict runs the sequence from a zero state and returns the outputs of every
// step. The returned rows are owned by the network and overwritten by the next call.
func (n *RecurrentNetwork) Predict(sequence [][]float32) [][]float32 {
	n.ForwardPropagate(sequence, nil)
	return n.Outputs[:len(sequence)]
}
