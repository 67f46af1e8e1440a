package gobptt

import "fmt"

// CostKind identifies one member of the closed set of cost functions
type CostKind uint8

const (
	KindMeanSquaredError CostKind = iota
	KindScaledMeanSquaredError
)

func (k CostKind) String() string {
	switch k {
	case KindMeanSquaredError:
		return "mse"
	case KindScaledMeanSquaredError:
		return "scaledmse"
	}
	return fmt.Sprintf("CostKind(%d)", k)
}

// CostFunc turns the signed error (expected - actual) of an output neuron into a
// non-negative cost. Scale is only used by KindScaledMeanSquaredError.
type CostFunc struct {
	Kind  CostKind
	Scale float32
}

// MeanSquaredError is the squared error cost function (error^2)
var MeanSquaredError = CostFunc{Kind: KindMeanSquaredError}

// ScaledMeanSquaredError returns a squared error cost function multiplied by scale
// (error^2 * scale). Its derivative is error * scale.
func ScaledMeanSquaredError(scale float32) CostFunc {
	return CostFunc{Kind: KindScaledMeanSquaredError, Scale: scale}
}

// Cost returns the cost for the given error
func (c CostFunc) Cost(err float32) float32 {
	if c.Kind == KindScaledMeanSquaredError {
		return err * err * c.Scale
	}
	return err * err
}

// Derivative returns the derivative of the cost with respect to the given error
func (c CostFunc) Derivative(err float32) float32 {
	if c.Kind == KindScaledMeanSquaredError {
		return err * c.Scale
	}
	return err * 2
}

// CostByName returns the cost function with the given name ("mse", or "scaledmse" with the given scale)
func CostByName(name string, scale float32) (CostFunc, error) {
	switch name {
	case KindMeanSquaredError.String():
		return MeanSquaredError, nil
	case KindScaledMeanSquaredError.String():
		return ScaledMeanSquaredError(scale), nil
	}
	return CostFunc{}, fmt.Errorf("unknown cost function %q", name)
}
