package gobptt

import "math/rand/v2"

// WeightInit returns the initial weight connecting the given input to the given neuron
type WeightInit func(neuron, input int) float32

// BiasInit returns the initial bias of the given neuron
type BiasInit func(neuron int) float32

// ConstantWeights returns a WeightInit that always returns v
func ConstantWeights(v float32) WeightInit {
	return func(int, int) float32 { return v }
}

// ConstantBiases returns a BiasInit that always returns v
func ConstantBiases(v float32) BiasInit {
	return func(int) float32 { return v }
}

// UniformWeights returns a WeightInit drawing from [min, max) using rng.
// The caller owns rng; seed it for reproducible networks.
func UniformWeights(rng *rand.Rand, min, max float32) WeightInit {
	return func(int, int) float32 { return min + rng.Float32()*(max-min) }
}

// UniformBiases returns a BiasInit drawing from [min, max) using rng
func UniformBiases(rng *rand.Rand, min, max float32) BiasInit {
	return func(int) float32 { return min + rng.Float32()*(max-min) }
}

// LayerDef describes a dense layer to be built once its input count is known
type LayerDef struct {
	NeuronCount int
	Activation  ActivationFunc
	InitWeights WeightInit
	InitBiases  BiasInit
	Vectorized  bool // use the data-parallel kernels
}

// Build creates the dense layer described by d with the given number of inputs.
// Nil initializers default to zero.
func (d LayerDef) Build(inputCount int) *DenseLayer {
	iw, ib := d.InitWeights, d.InitBiases
	if iw == nil {
		iw = ConstantWeights(0)
	}
	if ib == nil {
		ib = ConstantBiases(0)
	}
	l := NewDenseLayer(d.NeuronCount, inputCount, iw, ib, d.Activation)
	l.Vectorized = d.Vectorized
	return l
}

// OutputDef describes a terminal output layer
type OutputDef struct {
	NeuronCount int
	Activation  ActivationFunc
	Cost        CostFunc
	InitWeights WeightInit
	Vectorized  bool
}

// Build creates the output layer described by d with the given number of inputs
func (d OutputDef) Build(inputCount int) *OutputLayer {
	iw := d.InitWeights
	if iw == nil {
		iw = ConstantWeights(0)
	}
	l := NewOutputLayer(d.Activation, d.Cost, iw, inputCount, d.NeuronCount)
	l.Vectorized = d.Vectorized
	return l
}
