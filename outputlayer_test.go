package gobptt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestOutputLayer(af ActivationFunc) *OutputLayer {
	l := NewOutputLayer(af, MeanSquaredError, ConstantWeights(0), 2, 2)
	l.Weights = [][]float32{{-1.2, 0.4}, {2.0, -1.0}}
	return l
}

func TestOutputLayerCompute(t *testing.T) {
	l := newTestOutputLayer(Logistic)
	require.Equal(t, 2, l.NeuronCount())
	require.Equal(t, 2, l.InputCount())
	l.Compute([]float32{1.2, -2.0})

	// no bias: [1.2*-1.2 + -2*0.4, 1.2*2 + -2*-1] = [-2.24, 4.4]
	wantNet := []float32{-2.24, 4.4}
	for n, net := range wantNet {
		if !aboutEqual(l.OutputsBeforeActivation[n], net, defTol) {
			t.Errorf("error: neuron %d: expected net input %g, but got %g", n, net, l.OutputsBeforeActivation[n])
		}
		if !aboutEqual(l.Outputs[n], LogisticFunc(net), defTol) {
			t.Errorf("error: neuron %d: expected output %g, but got %g", n, LogisticFunc(net), l.Outputs[n])
		}
	}
}

func TestOutputLayerCosts(t *testing.T) {
	for _, cost := range []CostFunc{MeanSquaredError, ScaledMeanSquaredError(0.5)} {
		l := newTestOutputLayer(Identity)
		l.Cost = cost
		copy(l.Outputs, []float32{-0.2, 2.4})
		expected := []float32{0, 1}
		l.ComputeCosts(expected)
		for n := range expected {
			err := expected[n] - l.Outputs[n]
			require.Equal(t, err, l.Errors[n])
			require.Equal(t, cost.Cost(err), l.Costs[n])
		}
		require.Equal(t, l.Costs[0]+l.Costs[1], l.TotalCost())
		require.Equal(t, (l.Costs[0]+l.Costs[1])/2, l.MeanCost())
	}

	l := newTestOutputLayer(Identity)
	require.Panics(t, func() {
		l.ComputeCosts([]float32{1})
	})
}

func TestOutputLayerGradients(t *testing.T) {
	l := newTestOutputLayer(Identity)
	l.Compute([]float32{1, 0})
	l.ComputeCosts([]float32{0, 0})
	l.ComputeGradients()
	// outputs are [-1.2, 2], errors [1.2, -2], gradients 2 * error
	require.InDeltaSlice(t, []float32{2.4, -4}, l.NeuronGradients, 1e-6)

	l.Cost = ScaledMeanSquaredError(3)
	l.ComputeGradients()
	// the scaled derivative is error * scale
	require.InDeltaSlice(t, []float32{3.6, -6}, l.NeuronGradients, 1e-6)
}

// TestSingleNeuronWeightUpdate repeatedly moves a single output neuron towards
// 0 and checks the cost never goes up.
func TestSingleNeuronWeightUpdate(t *testing.T) {
	l := NewOutputLayer(Tanh, MeanSquaredError, ConstantWeights(0), 2, 1)
	l.Weights = [][]float32{{-0.2, 0.9}}
	inputs := []float32{0.4, -0.3}
	expected := []float32{0}

	l.Compute(inputs)
	l.ComputeCosts(expected)
	for i := range 500 {
		before := l.Costs[0]
		l.ComputeGradients()
		l.UpdateWeights(inputs, 0.5)
		l.Compute(inputs)
		l.ComputeCosts(expected)
		if l.Costs[0] > before {
			t.Fatalf("error: iteration %d: cost increased from %g to %g", i, before, l.Costs[0])
		}
	}
	require.Less(t, l.Costs[0], float32(1e-6))
}

func TestOutputLayerVectorizedCost(t *testing.T) {
	l := NewOutputLayer(Identity, MeanSquaredError, ConstantWeights(1), 1, 19)
	l.Vectorized = true
	l.Compute([]float32{0.5})
	expected := make([]float32, 19)
	for n := range expected {
		expected[n] = float32(n) / 4
	}
	l.ComputeCosts(expected)

	var want float32
	for _, c := range l.Costs {
		want += c
	}
	require.InDelta(t, want, l.TotalCost(), 1e-4)
}
