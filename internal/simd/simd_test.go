package simd

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// lengths covers empty input, sub-vector tails, and several full vectors for any lane width.
var lengths = []int{0, 1, 3, 4, 5, 7, 8, 9, 15, 16, 17, 31, 33, 64, 67}

func randomSlice(rng *rand.Rand, n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = rng.Float32()*4 - 2
	}
	return s
}

func TestDot(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range lengths {
		a, b := randomSlice(rng, n), randomSlice(rng, n)
		var want float32
		for i := range a {
			want += a[i] * b[i]
		}
		require.InDelta(t, want, Dot(a, b), 1e-4, "n=%d", n)
	}
	require.Equal(t, float32(32), Dot([]float32{1, 2, 3}, []float32{4, 5, 6, 100}))
}

func TestMulConstAddTo(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, n := range lengths {
		dst, x := randomSlice(rng, n), randomSlice(rng, n)
		want := make([]float32, n)
		for i := range want {
			want[i] = dst[i] + 0.3*x[i]
		}
		MulConstAddTo(dst, 0.3, x)
		require.InDeltaSlice(t, want, dst, 1e-5, "n=%d", n)
	}
}

func TestMulToAndSum(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, n := range lengths {
		a, b := randomSlice(rng, n), randomSlice(rng, n)
		dst := make([]float32, n)
		MulTo(dst, a, b)
		var want float32
		for i := range a {
			require.Equal(t, a[i]*b[i], dst[i])
			want += a[i]
		}
		require.InDelta(t, want, Sum(a), 1e-4, "n=%d", n)
	}
}

func TestReLU(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, n := range lengths {
		src, errs := randomSlice(rng, n), randomSlice(rng, n)
		out := make([]float32, n)
		grad := make([]float32, n)
		ReLU(out, src)
		ReLUDerivative(grad, errs, src)
		for i := range src {
			if src[i] > 0 {
				require.Equal(t, src[i], out[i])
				require.Equal(t, errs[i], grad[i])
			} else {
				require.Zero(t, out[i])
				require.Zero(t, grad[i])
			}
		}
	}
}

func TestLeakyReLU(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	const alpha = 0.01
	for _, n := range lengths {
		src, errs := randomSlice(rng, n), randomSlice(rng, n)
		out := make([]float32, n)
		grad := make([]float32, n)
		LeakyReLU(out, src, alpha)
		LeakyReLUDerivative(grad, errs, src, alpha)
		for i := range src {
			if src[i] < 0 {
				require.Equal(t, alpha*src[i], out[i])
				require.Equal(t, alpha*errs[i], grad[i])
			} else {
				require.Equal(t, src[i], out[i])
				require.Equal(t, errs[i], grad[i])
			}
		}
	}
}
