package gobptt

import "github.com/kkoreilly/gobptt/internal/simd"

// OutputLayer is the terminal layer of a network. It has no biases, and it
// holds the cost function used to compare its outputs against expected values.
type OutputLayer struct {
	Weights    [][]float32    // Weights[n][i] connects input i to neuron n
	Activation ActivationFunc // the activation function for this layer
	Cost       CostFunc       // the cost function for this layer
	Vectorized bool           // whether to use the data-parallel kernels

	OutputsBeforeActivation []float32 // the net input of each neuron from the last Compute
	Outputs                 []float32 // the activation value of each neuron from the last Compute
	Errors                  []float32 // expected - output for each neuron from the last ComputeCosts
	Costs                   []float32 // the cost of each neuron from the last ComputeCosts
	NeuronGradients         []float32 // the gradient of each neuron from the last ComputeGradients
}

// NewOutputLayer creates an output layer with the given number of inputs and neurons
func NewOutputLayer(activation ActivationFunc, cost CostFunc, initWeights WeightInit, inputCount, neuronCount int) *OutputLayer {
	if activation.Func == nil {
		activation = Activations[activation.Kind]
	}
	l := &OutputLayer{
		Weights:                 make([][]float32, neuronCount),
		Activation:              activation,
		Cost:                    cost,
		OutputsBeforeActivation: make([]float32, neuronCount),
		Outputs:                 make([]float32, neuronCount),
		Errors:                  make([]float32, neuronCount),
		Costs:                   make([]float32, neuronCount),
		NeuronGradients:         make([]float32, neuronCount),
	}
	for n := range l.Weights {
		l.Weights[n] = make([]float32, inputCount)
		for i := range l.Weights[n] {
			l.Weights[n][i] = initWeights(n, i)
		}
	}
	return l
}

// NeuronCount returns the number of neurons (outputs) on this layer
func (l *OutputLayer) NeuronCount() int {
	return len(l.Weights)
}

// InputCount returns the number of inputs each neuron on this layer takes
func (l *OutputLayer) InputCount() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

// Compute fills Outputs from the outputs of the previous layer. There is no bias term.
func (l *OutputLayer) Compute(inputs []float32) {
	MustLen("OutputLayer.Compute", len(inputs), l.InputCount())
	for n, weights := range l.Weights {
		var net float32
		if l.Vectorized {
			net = simd.Dot(weights, inputs)
		} else {
			for i, w := range weights {
				net += w * inputs[i]
			}
		}
		l.OutputsBeforeActivation[n] = net
	}
	l.Activation.ApplyBatch(l.Outputs, l.OutputsBeforeActivation, l.Vectorized)
}

// ComputeCosts fills Errors and Costs from the expected values. Compute must have been called.
func (l *OutputLayer) ComputeCosts(expected []float32) {
	MustLen("OutputLayer.ComputeCosts", len(expected), len(l.Outputs))
	for n, out := range l.Outputs {
		err := expected[n] - out
		l.Errors[n] = err
		l.Costs[n] = l.Cost.Cost(err)
	}
}

// ComputeGradients fills NeuronGradients from Errors. ComputeCosts must have been called.
// Together with the expected - actual sign of the errors and the additive weight
// update, this moves the weights down the cost gradient.
func (l *OutputLayer) ComputeGradients() {
	for n, err := range l.Errors {
		l.NeuronGradients[n] = l.Cost.Derivative(err) * l.Activation.Derivative(l.OutputsBeforeActivation[n])
	}
}

// UpdateWeights moves every weight by learningRate * neuron gradient * input
func (l *OutputLayer) UpdateWeights(inputs []float32, learningRate float32) {
	l.UpdateWeightsWith(l.NeuronGradients, inputs, learningRate)
}

// UpdateWeightsWith is UpdateWeights using the given gradients instead of NeuronGradients
func (l *OutputLayer) UpdateWeightsWith(gradients, inputs []float32, learningRate float32) {
	updateWeights(l.Weights, gradients, inputs, learningRate, l.Vectorized)
}

// TotalCost returns the sum of Costs
func (l *OutputLayer) TotalCost() float32 {
	if l.Vectorized {
		return simd.Sum(l.Costs)
	}
	var sum float32
	for _, c := range l.Costs {
		sum += c
	}
	return sum
}

// MeanCost returns the mean of Costs
func (l *OutputLayer) MeanCost() float32 {
	if len(l.Costs) == 0 {
		return 0
	}
	return l.TotalCost() / float32(len(l.Costs))
}
