// Package simd holds the data-parallel kernels used by layers that opt into the
// vectorized path. Every kernel walks the input in full vectors first and then
// finishes the remaining tail elements with scalar code, so any slice length works.
package simd

import "github.com/ajroetker/go-highway/hwy"

// lanes returns the number of float32 lanes per vector. A width of zero means
// no usable vector unit, in which case the kernels run entirely on the tail loop.
func lanes() int {
	return hwy.MaxLanes[float32]()
}

// Dot returns the sum of a[i]*b[i] over the shorter of the two slices.
func Dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	w := lanes()

	var i int
	var sum float32
	if w > 0 {
		acc := hwy.Zero[float32]()
		for ; i+w <= n; i += w {
			acc = hwy.MulAdd(hwy.Load(a[i:]), hwy.Load(b[i:]), acc)
		}
		sum = hwy.ReduceSum(acc)
	}
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// MulConstAddTo performs dst[i] += a * x[i] (AXPY) over the shorter of dst and x.
func MulConstAddTo(dst []float32, a float32, x []float32) {
	n := min(len(dst), len(x))
	w := lanes()

	var i int
	if w > 0 {
		va := hwy.Set(a)
		for ; i+w <= n; i += w {
			hwy.Store(hwy.MulAdd(va, hwy.Load(x[i:]), hwy.Load(dst[i:])), dst[i:])
		}
	}
	for ; i < n; i++ {
		dst[i] += a * x[i]
	}
}

// MulTo performs dst[i] = a[i] * b[i].
func MulTo(dst, a, b []float32) {
	n := min(len(dst), min(len(a), len(b)))
	w := lanes()

	var i int
	if w > 0 {
		for ; i+w <= n; i += w {
			hwy.Store(hwy.Mul(hwy.Load(a[i:]), hwy.Load(b[i:])), dst[i:])
		}
	}
	for ; i < n; i++ {
		dst[i] = a[i] * b[i]
	}
}

// Sum returns the sum of all elements of v.
func Sum(v []float32) float32 {
	w := lanes()

	var i int
	var sum float32
	if w > 0 {
		acc := hwy.Zero[float32]()
		for ; i+w <= len(v); i += w {
			acc = hwy.Add(acc, hwy.Load(v[i:]))
		}
		sum = hwy.ReduceSum(acc)
	}
	for ; i < len(v); i++ {
		sum += v[i]
	}
	return sum
}

// ReLU performs dst[i] = max(src[i], 0).
func ReLU(dst, src []float32) {
	n := min(len(dst), len(src))
	w := lanes()

	var i int
	if w > 0 {
		zero := hwy.Zero[float32]()
		for ; i+w <= n; i += w {
			hwy.Store(hwy.Max(hwy.Load(src[i:]), zero), dst[i:])
		}
	}
	for ; i < n; i++ {
		if src[i] > 0 {
			dst[i] = src[i]
		} else {
			dst[i] = 0
		}
	}
}

// ReLUDerivative performs dst[i] = errors[i] if pre[i] > 0, else 0.
func ReLUDerivative(dst, errors, pre []float32) {
	n := min(len(dst), min(len(errors), len(pre)))
	w := lanes()

	var i int
	if w > 0 {
		zero := hwy.Zero[float32]()
		for ; i+w <= n; i += w {
			mask := hwy.GreaterThan(hwy.Load(pre[i:]), zero)
			hwy.Store(hwy.IfThenElseZero(mask, hwy.Load(errors[i:])), dst[i:])
		}
	}
	for ; i < n; i++ {
		if pre[i] > 0 {
			dst[i] = errors[i]
		} else {
			dst[i] = 0
		}
	}
}

// LeakyReLU performs dst[i] = src[i] if src[i] >= 0, else alpha*src[i].
func LeakyReLU(dst, src []float32, alpha float32) {
	n := min(len(dst), len(src))
	w := lanes()

	var i int
	if w > 0 {
		zero := hwy.Zero[float32]()
		va := hwy.Set(alpha)
		for ; i+w <= n; i += w {
			v := hwy.Load(src[i:])
			mask := hwy.GreaterEqual(v, zero)
			hwy.Store(hwy.IfThenElse(mask, v, hwy.Mul(v, va)), dst[i:])
		}
	}
	for ; i < n; i++ {
		if src[i] < 0 {
			dst[i] = alpha * src[i]
		} else {
			dst[i] = src[i]
		}
	}
}

// LeakyReLUDerivative performs dst[i] = errors[i] if pre[i] >= 0, else alpha*errors[i].
func LeakyReLUDerivative(dst, errors, pre []float32, alpha float32) {
	n := min(len(dst), min(len(errors), len(pre)))
	w := lanes()

	var i int
	if w > 0 {
		zero := hwy.Zero[float32]()
		va := hwy.Set(alpha)
		for ; i+w <= n; i += w {
			e := hwy.Load(errors[i:])
			mask := hwy.GreaterEqual(hwy.Load(pre[i:]), zero)
			hwy.Store(hwy.IfThenElse(mask, e, hwy.Mul(e, va)), dst[i:])
		}
	}
	for ; i < n; i++ {
		if pre[i] < 0 {
			dst[i] = alpha * errors[i]
		} else {
			dst[i] = errors[i]
		}
	}
}
