package gobptt

import "github.com/kkoreilly/gobptt/internal/simd"

// DenseLayer is a fully-connected layer of neurons. All scratch slices are
// sized at construction and only overwritten afterwards.
type DenseLayer struct {
	Weights    [][]float32    // Weights[n][i] connects input i to neuron n
	Biases     []float32      // the bias of each neuron
	Activation ActivationFunc // the activation function for this layer
	Vectorized bool           // whether to use the data-parallel kernels

	OutputsBeforeActivation []float32 // the net input of each neuron from the last forward pass
	Outputs                 []float32 // the activation value of each neuron from the last forward pass
	NeuronGradients         []float32 // the gradient of each neuron from the last ComputeGradients

	errors []float32 // downstream errors accumulated by GradientsFor
}

// NewDenseLayer creates a dense layer with the given number of neurons and inputs.
// Weights and biases are set from the given initializers.
func NewDenseLayer(neuronCount, inputCount int, initWeights WeightInit, initBiases BiasInit, activation ActivationFunc) *DenseLayer {
	if activation.Func == nil {
		activation = Activations[activation.Kind]
	}
	l := &DenseLayer{
		Weights:                 make([][]float32, neuronCount),
		Biases:                  make([]float32, neuronCount),
		Activation:              activation,
		OutputsBeforeActivation: make([]float32, neuronCount),
		Outputs:                 make([]float32, neuronCount),
		NeuronGradients:         make([]float32, neuronCount),
		errors:                  make([]float32, neuronCount),
	}
	for n := range l.Weights {
		l.Weights[n] = make([]float32, inputCount)
		for i := range l.Weights[n] {
			l.Weights[n][i] = initWeights(n, i)
		}
		l.Biases[n] = initBiases(n)
	}
	return l
}

// NeuronCount returns the number of neurons on this layer
func (l *DenseLayer) NeuronCount() int {
	return len(l.Weights)
}

// InputCount returns the number of inputs each neuron on this layer takes
func (l *DenseLayer) InputCount() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

// ForwardPropagate computes the net input (weighted sum plus bias) and the
// activation value of every neuron for the given inputs.
func (l *DenseLayer) ForwardPropagate(inputs []float32) {
	MustLen("DenseLayer.ForwardPropagate", len(inputs), l.InputCount())
	for n, weights := range l.Weights {
		var net float32
		if l.Vectorized {
			net = simd.Dot(weights, inputs)
		} else {
			for i, w := range weights {
				net += w * inputs[i]
			}
		}
		l.OutputsBeforeActivation[n] = net + l.Biases[n]
	}
	l.Activation.ApplyBatch(l.Outputs, l.OutputsBeforeActivation, l.Vectorized)
}

// ComputeGradients computes NeuronGradients from the weights and gradients of
// the layer that consumes this layer's outputs. outputWeights[j][n] is the
// weight from neuron n on this layer to neuron j on the consuming layer.
func (l *DenseLayer) ComputeGradients(outputWeights [][]float32, outputGradients []float32) {
	l.GradientsFor(l.NeuronGradients, l.OutputsBeforeActivation, outputWeights, outputGradients)
}

// GradientsFor is ComputeGradients with explicit destination and net inputs,
// for replaying a forward pass other than the last one. Rows of outputWeights
// may be longer than the neuron count; only their first NeuronCount entries are read.
func (l *DenseLayer) GradientsFor(dst, pre []float32, outputWeights [][]float32, outputGradients []float32) {
	MustLen("DenseLayer.ComputeGradients", len(outputWeights), len(outputGradients))
	MustLen("DenseLayer.ComputeGradients", len(dst), l.NeuronCount())
	errs := l.errors
	if l.Vectorized {
		clear(errs)
		for j, row := range outputWeights {
			MustAtLeast("DenseLayer.ComputeGradients", len(row), len(errs))
			simd.MulConstAddTo(errs, outputGradients[j], row[:len(errs)])
		}
	} else {
		for j := range outputWeights {
			MustAtLeast("DenseLayer.ComputeGradients", len(outputWeights[j]), len(errs))
		}
		for n := range errs {
			var err float32
			for j, g := range outputGradients {
				err += outputWeights[j][n] * g
			}
			errs[n] = err
		}
	}
	l.Activation.ApplyDerivativeBatch(dst, errs, pre, l.Vectorized)
}

// UpdateWeights moves every weight by learningRate * neuron gradient * input,
// where inputs are the same inputs that produced the forward pass being corrected.
func (l *DenseLayer) UpdateWeights(inputs []float32, learningRate float32) {
	l.UpdateWeightsWith(l.NeuronGradients, inputs, learningRate)
}

// UpdateWeightsWith is UpdateWeights using the given gradients instead of NeuronGradients
func (l *DenseLayer) UpdateWeightsWith(gradients, inputs []float32, learningRate float32) {
	updateWeights(l.Weights, gradients, inputs, learningRate, l.Vectorized)
}

// UpdateBiases moves every bias by neuron gradient * learningRate
func (l *DenseLayer) UpdateBiases(learningRate float32) {
	l.UpdateBiasesWith(l.NeuronGradients, learningRate)
}

// UpdateBiasesWith is UpdateBiases using the given gradients instead of NeuronGradients
func (l *DenseLayer) UpdateBiasesWith(gradients []float32, learningRate float32) {
	MustLen("DenseLayer.UpdateBiases", len(gradients), len(l.Biases))
	for n, g := range gradients {
		l.Biases[n] += g * learningRate
	}
}

// updateWeights applies weights[n][i] += learningRate * gradients[n] * inputs[i]
func updateWeights(weights [][]float32, gradients, inputs []float32, learningRate float32, vectorized bool) {
	MustLen("UpdateWeights", len(gradients), len(weights))
	for n, row := range weights {
		MustLen("UpdateWeights", len(inputs), len(row))
		step := learningRate * gradients[n]
		if vectorized {
			simd.MulConstAddTo(row, step, inputs)
			continue
		}
		for i, in := range inputs {
			row[i] += step * in
		}
	}
}
