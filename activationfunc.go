package gobptt

import (
	"fmt"

	"github.com/goki/mat32"
	"github.com/kkoreilly/gobptt/internal/simd"
)

// ActivationKind identifies one member of the closed set of activation functions
type ActivationKind uint8

const (
	KindIdentity ActivationKind = iota
	KindSigmoid
	KindTanh
	KindReLU
	KindLeakyReLU
	KindGCU
	KindGaussian
	KindSwish
	KindAmeo
)

var activationKindNames = [...]string{
	KindIdentity:  "identity",
	KindSigmoid:   "sigmoid",
	KindTanh:      "tanh",
	KindReLU:      "relu",
	KindLeakyReLU: "leakyrelu",
	KindGCU:       "gcu",
	KindGaussian:  "gaussian",
	KindSwish:     "swish",
	KindAmeo:      "ameo",
}

func (k ActivationKind) String() string {
	if int(k) < len(activationKindNames) {
		return activationKindNames[k]
	}
	return fmt.Sprintf("ActivationKind(%d)", k)
}

// LeakySlope is the slope of LeakyReLU for negative inputs
const LeakySlope float32 = 0.01

// ActivationFunc is a function that turns a given net input into an activation value.
// It contains the actual activation function (Func) and its derivative (Derivative).
// Derivative always takes the net input (pre-activation value), not the activation.
type ActivationFunc struct {
	Kind       ActivationKind
	Func       func(x float32) float32
	Derivative func(x float32) float32
}

// Identity is the identity activation function that returns the input unchanged
var Identity = ActivationFunc{
	Kind:       KindIdentity,
	Func:       IdentityFunc,
	Derivative: IdentityDerivative,
}

// IdentityFunc just returns the input x unchanged
func IdentityFunc(x float32) float32 {
	return x
}

// IdentityDerivative returns the derivative of the identity function (which is 1)
func IdentityDerivative(x float32) float32 {
	return 1
}

// Rectifier is the rectifier (ReLU) activation function that returns x if x > 0 and 0 otherwise
var Rectifier = ActivationFunc{
	Kind:       KindReLU,
	Func:       RectifierFunc,
	Derivative: RectifierDerivative,
}

// RectifierFunc returns the value of the rectifier (ReLU) activation function at the given point (x if x > 0 and 0 otherwise)
func RectifierFunc(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

// RectifierDerivative returns the derivative of the rectifier (ReLU) activation function at the given point (1 if x > 0 and 0 otherwise)
func RectifierDerivative(x float32) float32 {
	if x > 0 {
		return 1
	}
	return 0
}

// LeakyRectifier is the leaky rectifier (LeakyReLU) activation function that returns x if x >= 0 and LeakySlope*x otherwise
var LeakyRectifier = ActivationFunc{
	Kind:       KindLeakyReLU,
	Func:       LeakyRectifierFunc,
	Derivative: LeakyRectifierDerivative,
}

// LeakyRectifierFunc returns x if x >= 0 and LeakySlope*x otherwise
func LeakyRectifierFunc(x float32) float32 {
	if x < 0 {
		return LeakySlope * x
	}
	return x
}

// LeakyRectifierDerivative returns 1 if x >= 0 and LeakySlope otherwise
func LeakyRectifierDerivative(x float32) float32 {
	if x < 0 {
		return LeakySlope
	}
	return 1
}

// Logistic is the standard logistic / Sigmoid activation function (1 / (1 + e^-x))
var Logistic = ActivationFunc{
	Kind:       KindSigmoid,
	Func:       LogisticFunc,
	Derivative: LogisticFuncDerivative,
}

// LogisticFunc returns the value of the standard logistic / Sigmoid activation function at the given point (1 / (1 + e^-x))
func LogisticFunc(x float32) float32 {
	return 1 / (1 + mat32.FastExp(-x))
}

// LogisticFuncDerivative returns the derivative of the standard logistic / Sigmoid activation function at the given point
func LogisticFuncDerivative(x float32) float32 {
	y := LogisticFunc(x)
	return y * (1 - y)
}

// Tanh is the hyperbolic tangent activation function
var Tanh = ActivationFunc{
	Kind:       KindTanh,
	Func:       TanhFunc,
	Derivative: TanhDerivative,
}

// TanhFunc returns tanh(x)
func TanhFunc(x float32) float32 {
	return mat32.Tanh(x)
}

// TanhDerivative returns 1 - tanh(x)^2
func TanhDerivative(x float32) float32 {
	t := mat32.Tanh(x)
	return 1 - t*t
}

// GCU is the growing cosine unit activation function (x * cos(x))
var GCU = ActivationFunc{
	Kind:       KindGCU,
	Func:       GCUFunc,
	Derivative: GCUDerivative,
}

// GCUFunc returns x * cos(x)
func GCUFunc(x float32) float32 {
	return x * mat32.Cos(x)
}

// GCUDerivative returns cos(x) - x * sin(x)
func GCUDerivative(x float32) float32 {
	return mat32.Cos(x) - x*mat32.Sin(x)
}

// Gaussian is the gaussian activation function (e^(-x^2))
var Gaussian = ActivationFunc{
	Kind:       KindGaussian,
	Func:       GaussianFunc,
	Derivative: GaussianDerivative,
}

// GaussianFunc returns e^(-x^2)
func GaussianFunc(x float32) float32 {
	return mat32.Exp(-x * x)
}

// GaussianDerivative returns -2x * e^(-x^2)
func GaussianDerivative(x float32) float32 {
	return -2 * x * mat32.Exp(-x*x)
}

// Swish is the swish activation function (x / (1 + e^-x))
var Swish = ActivationFunc{
	Kind:       KindSwish,
	Func:       SwishFunc,
	Derivative: SwishDerivative,
}

// SwishFunc returns x / (1 + e^-x)
func SwishFunc(x float32) float32 {
	return x / (1 + mat32.Exp(-x))
}

// SwishDerivative returns (1 + e^-x + x*e^-x) / (1 + e^-x)^2
func SwishDerivative(x float32) float32 {
	e := mat32.Exp(-x)
	d := 1 + e
	return (1 + e + x*e) / (d * d)
}

// Ameo is GCU for x >= 0 and Tanh otherwise
var Ameo = ActivationFunc{
	Kind:       KindAmeo,
	Func:       AmeoFunc,
	Derivative: AmeoDerivative,
}

// AmeoFunc returns GCUFunc(x) for x >= 0 and TanhFunc(x) otherwise
func AmeoFunc(x float32) float32 {
	if x >= 0 {
		return GCUFunc(x)
	}
	return TanhFunc(x)
}

// AmeoDerivative returns GCUDerivative(x) for x >= 0 and TanhDerivative(x) otherwise
func AmeoDerivative(x float32) float32 {
	if x >= 0 {
		return GCUDerivative(x)
	}
	return TanhDerivative(x)
}

// Activations contains every activation function, indexed by kind
var Activations = [...]ActivationFunc{
	KindIdentity:  Identity,
	KindSigmoid:   Logistic,
	KindTanh:      Tanh,
	KindReLU:      Rectifier,
	KindLeakyReLU: LeakyRectifier,
	KindGCU:       GCU,
	KindGaussian:  Gaussian,
	KindSwish:     Swish,
	KindAmeo:      Ameo,
}

// ActivationByName returns the activation function with the given name (see ActivationKind.String)
func ActivationByName(name string) (ActivationFunc, error) {
	for _, af := range Activations {
		if af.Kind.String() == name {
			return af, nil
		}
	}
	return ActivationFunc{}, fmt.Errorf("unknown activation function %q", name)
}

// ApplyBatch sets dst[i] = Func(src[i]). When vectorized is set, the kinds
// with a data-parallel kernel use it; the results match the scalar loop.
func (af ActivationFunc) ApplyBatch(dst, src []float32, vectorized bool) {
	MustLen("ActivationFunc.ApplyBatch", len(dst), len(src))
	if vectorized {
		switch af.Kind {
		case KindIdentity:
			copy(dst, src)
			return
		case KindReLU:
			simd.ReLU(dst, src)
			return
		case KindLeakyReLU:
			simd.LeakyReLU(dst, src, LeakySlope)
			return
		}
	}
	for i, x := range src {
		dst[i] = af.Func(x)
	}
}

// ApplyDerivativeBatch sets dst[i] = errors[i] * Derivative(pre[i]), where pre
// holds the net inputs that produced the errors. dst must not share memory with errors.
func (af ActivationFunc) ApplyDerivativeBatch(dst, errors, pre []float32, vectorized bool) {
	MustLen("ActivationFunc.ApplyDerivativeBatch", len(dst), len(errors))
	MustLen("ActivationFunc.ApplyDerivativeBatch", len(errors), len(pre))
	if vectorized {
		switch af.Kind {
		case KindIdentity:
			copy(dst, errors)
		case KindReLU:
			simd.ReLUDerivative(dst, errors, pre)
		case KindLeakyReLU:
			simd.LeakyReLUDerivative(dst, errors, pre, LeakySlope)
		default:
			// derivatives have no kernel, the products do
			for i, x := range pre {
				dst[i] = af.Derivative(x)
			}
			simd.MulTo(dst, errors, dst)
		}
		return
	}
	for i, e := range errors {
		dst[i] = e * af.Derivative(pre[i])
	}
}
