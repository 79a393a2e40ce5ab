// Package smoothing reduces landmark jitter with a One-Euro adaptive
// low-pass filter: smooth for slow signals, responsive for fast ones.
//
// Reference: Casiez et al., "1€ Filter: A Simple Speed-based Low-pass Filter"
package smoothing

import "math"

// OneEuroFilter filters a single scalar stream. The cutoff frequency
// rises with the smoothed velocity estimate, so the filter trades
// smoothing for latency only when the signal actually moves.
type OneEuroFilter struct {
	minCutoff float64 // Minimum cutoff frequency (lower = more smoothing)
	beta      float64 // Speed coefficient (higher = more velocity response)
	dCutoff   float64 // Cutoff for the derivative estimate

	// State. Initialized on first sample.
	initialized bool
	xPrev       float64
	dxPrev      float64
	tPrev       float64
}

// NewOneEuroFilter creates a filter with the given tuning.
func NewOneEuroFilter(minCutoff, beta, dCutoff float64) *OneEuroFilter {
	return &OneEuroFilter{
		minCutoff: minCutoff,
		beta:      beta,
		dCutoff:   dCutoff,
	}
}

// smoothingFactor returns alpha for a low-pass with the given cutoff
// frequency over elapsed time te.
func smoothingFactor(te, cutoff float64) float64 {
	r := 2 * math.Pi * cutoff * te
	return r / (r + 1)
}

// Filter processes one sample at timestamp t (seconds) and returns the
// filtered value. The first sample passes through unchanged. A
// non-positive elapsed time returns the previous filtered value
// unchanged, guarding against duplicate or out-of-order timestamps.
func (f *OneEuroFilter) Filter(x, t float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.xPrev = x
		f.dxPrev = 0
		f.tPrev = t
		return x
	}

	te := t - f.tPrev
	if te <= 0 {
		return f.xPrev
	}

	// Velocity estimate, low-passed with the derivative cutoff.
	dx := (x - f.xPrev) / te
	alphaD := smoothingFactor(te, f.dCutoff)
	dxHat := alphaD*dx + (1-alphaD)*f.dxPrev

	// Adaptive cutoff: faster signal, higher cutoff, less lag.
	cutoff := f.minCutoff + f.beta*math.Abs(dxHat)
	alpha := smoothingFactor(te, cutoff)
	xHat := alpha*x + (1-alpha)*f.xPrev

	f.xPrev = xHat
	f.dxPrev = dxHat
	f.tPrev = t

	return xHat
}

// Reset clears the filter state; the next sample re-initializes it.
func (f *OneEuroFilter) Reset() {
	f.initialized = false
	f.xPrev = 0
	f.dxPrev = 0
	f.tPrev = 0
}
