// Package trajectory post-processes recorded routes for reporting.
package trajectory

import (
	"fmt"
	"math"

	"socialnav-sim/internal/common"

	"gonum.org/v1/gonum/floats"
)

// DefaultSigma is the default Gaussian bandwidth, in samples.
const DefaultSigma = 2.0

// truncate is the kernel half-width in standard deviations.
const truncate = 4.0

// Smooth applies a 1-D Gaussian filter of bandwidth sigma independently to the
// x and y sequences of route. The boundary is handled by reflecting the
// sequence about its ends, so short routes degrade to near identity. The result
// has the same length as route; route itself is not modified.
func Smooth(route []common.Vector, sigma float64) []common.Vector {
	out := make([]common.Vector, len(route))
	if len(route) == 0 {
		return out
	}
	if sigma <= 0 || len(route) == 1 {
		copy(out, route)
		return out
	}

	xs := make([]float64, len(route))
	ys := make([]float64, len(route))
	for i, p := range route {
		xs[i], ys[i] = p.X, p.Y
	}
	kernel := gaussianKernel(sigma)
	xs = convolveReflect(xs, kernel)
	ys = convolveReflect(ys, kernel)
	for i := range out {
		out[i] = common.NewVector(xs[i], ys[i])
	}
	return out
}

// gaussianKernel returns normalized weights for offsets -r..r.
func gaussianKernel(sigma float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

func convolveReflect(in, kernel []float64) []float64 {
	n := len(in)
	radius := len(kernel) / 2
	out := make([]float64, n)
	for i := range in {
		acc := 0.0
		for k, w := range kernel {
			acc += w * in[reflect(i+k-radius, n)]
		}
		out[i] = acc
	}
	return out
}

// reflect maps an out-of-range index onto [0, n) by mirroring about the
// sequence ends (d c b a | a b c d | d c b a), repeating as often as needed.
func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// Length returns the total polyline length of route.
func Length(route []common.Vector) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += route[i].Distance(route[i-1])
	}
	return total
}

// Deviation returns the root-mean-square distance between corresponding points
// of two routes of equal length.
func Deviation(raw, smoothed []common.Vector) (float64, error) {
	if len(raw) != len(smoothed) {
		return 0, fmt.Errorf("routes must have the same length: %d != %d", len(raw), len(smoothed))
	}
	if len(raw) == 0 {
		return 0, nil
	}
	sq := make([]float64, len(raw))
	for i := range raw {
		d := raw[i].Distance(smoothed[i])
		sq[i] = d * d
	}
	return math.Sqrt(floats.Sum(sq) / float64(len(sq))), nil
}
