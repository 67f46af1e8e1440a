// Package gobptt implements feedforward and recurrent neural networks with
// backpropagation (and backpropagation through time) in Go.
//
// Everything is single precision and synchronous. A network is not safe for
// concurrent use; callers that share one must serialize access themselves.
package gobptt

// Network is a feedforward neural network: an ordered stack of hidden dense
// layers feeding a single output layer.
type Network struct {
	LearningRate float32       // the rate used by Train
	HiddenLayers []*DenseLayer // the hidden layers, closest to the inputs first
	Output       *OutputLayer  // the output layer
	inputCount   int           // the number of inputs
}

// NewNetwork creates and returns a new network with the given number of inputs,
// hidden layers, and output layer. Each layer's input count is the previous
// layer's neuron count.
func NewNetwork(inputCount int, hidden []LayerDef, output OutputDef, learningRate float32) *Network {
	n := &Network{
		LearningRate: learningRate,
		HiddenLayers: make([]*DenseLayer, len(hidden)),
		inputCount:   inputCount,
	}
	numInputs := inputCount
	for i, def := range hidden {
		n.HiddenLayers[i] = def.Build(numInputs)
		numInputs = def.NeuronCount
	}
	n.Output = output.Build(numInputs)
	return n
}

// NewNetworkFromLayers assembles a network from already built layers,
// checking that adjacent layer sizes line up.
func NewNetworkFromLayers(hidden []*DenseLayer, output *OutputLayer, learningRate float32) *Network {
	inputCount := output.InputCount()
	if len(hidden) > 0 {
		inputCount = hidden[0].InputCount()
	}
	for i := 1; i < len(hidden); i++ {
		MustLen("NewNetworkFromLayers", hidden[i].InputCount(), hidden[i-1].NeuronCount())
	}
	if len(hidden) > 0 {
		MustLen("NewNetworkFromLayers", output.InputCount(), hidden[len(hidden)-1].NeuronCount())
	}
	return &Network{
		LearningRate: learningRate,
		HiddenLayers: hidden,
		Output:       output,
		inputCount:   inputCount,
	}
}

// InputCount returns the number of inputs the network takes
func (n *Network) InputCount() int {
	return n.inputCount
}

// OutputCount returns the number of outputs the network produces
func (n *Network) OutputCount() int {
	return n.Output.NeuronCount()
}

// layerInputs returns the inputs that fed hidden layer i on the last forward pass
func (n *Network) layerInputs(i int, example []float32) []float32 {
	if i == 0 {
		return example
	}
	return n.HiddenLayers[i-1].Outputs
}

// ForwardPropagate runs the inputs through every hidden layer in order and then the output layer
func (n *Network) ForwardPropagate(inputs []float32) {
	MustLen("Network.ForwardPropagate", len(inputs), n.inputCount)
	for i, l := range n.HiddenLayers {
		l.ForwardPropagate(n.layerInputs(i, inputs))
	}
	n.Output.Compute(n.layerInputs(len(n.HiddenLayers), inputs))
}

// Compute runs a forward pass and returns the output layer's outputs. The
// returned slice is owned by the output layer and is overwritten by the next call.
func (n *Network) Compute(inputs []float32) []float32 {
	n.ForwardPropagate(inputs)
	return n.Output.Outputs
}

// TrainOneExample trains the network on a single example and returns the mean
// cost across the output neurons. The cost is the one computed before the
// weights are updated; recomputing it afterwards would need a second forward pass.
func (n *Network) TrainOneExample(example, expected []float32, learningRate float32) float32 {
	n.ForwardPropagate(example)

	n.Output.ComputeCosts(expected)
	n.Output.ComputeGradients()

	// each layer needs the gradients of the layer it feeds, so we go backwards
	outputWeights, outputGradients := n.Output.Weights, n.Output.NeuronGradients
	for i := len(n.HiddenLayers) - 1; i >= 0; i-- {
		l := n.HiddenLayers[i]
		l.ComputeGradients(outputWeights, outputGradients)
		outputWeights, outputGradients = l.Weights, l.NeuronGradients
	}

	n.Output.UpdateWeights(n.layerInputs(len(n.HiddenLayers), example), learningRate)
	for i := len(n.HiddenLayers) - 1; i >= 0; i-- {
		l := n.HiddenLayers[i]
		l.UpdateWeights(n.layerInputs(i, example), learningRate)
		l.UpdateBiases(learningRate)
	}

	return n.Output.MeanCost()
}

// Train is TrainOneExample with the network's LearningRate
func (n *Network) Train(example, expected []float32) float32 {
	return n.TrainOneExample(example, expected, n.LearningRate)
}

// TrainManyExamples trains on consecutive examples packed into flat slices
// (InputCount values per example, OutputCount values per expected output)
// and returns the cost of each example.
func (n *Network) TrainManyExamples(examples, expected []float32, learningRate float32) []float32 {
	in, out := n.InputCount(), n.OutputCount()
	if in == 0 || out == 0 {
		return nil
	}
	count := len(examples) / in
	MustLen("Network.TrainManyExamples", len(examples), count*in)
	MustLen("Network.TrainManyExamples", len(expected), count*out)

	costs := make([]float32, count)
	for i := range costs {
		costs[i] = n.TrainOneExample(examples[i*in:(i+1)*in], expected[i*out:(i+1)*out], learningRate)
	}
	return costs
}

// PredictSweep computes the network's outputs for steps copies of example in
// which input dim goes from min towards max in (max-min)/steps increments.
// The outputs of each step are concatenated. example itself is not modified.
func (n *Network) PredictSweep(example []float32, dim int, min, max float32, steps int) []float32 {
	MustLen("Network.PredictSweep", len(example), n.InputCount())
	MustIndex("Network.PredictSweep", dim, len(example))

	inputs := append([]float32(nil), example...)
	outputs := make([]float32, 0, steps*n.OutputCount())
	stepSize := (max - min) / float32(steps)
	inputs[dim] = min
	for range steps {
		outputs = append(outputs, n.Compute(inputs)...)
		inputs[dim] += stepSize
	}
	return outputs
}
