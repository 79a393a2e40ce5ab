package posture

import "math"

// ringBuffer is a fixed-capacity float window; old samples fall off.
type ringBuffer struct {
	data []float64
	cap  int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{cap: capacity}
}

func (r *ringBuffer) push(v float64) {
	r.data = append(r.data, v)
	if len(r.data) > r.cap {
		r.data = r.data[1:]
	}
}

func (r *ringBuffer) len() int { return len(r.data) }

func (r *ringBuffer) stdDev() float64 {
	n := len(r.data)
	if n == 0 {
		return 0
	}
	var mean float64
	for _, v := range r.data {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range r.data {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n))
}

// boolRing is a fixed-capacity boolean window with a running true count.
type boolRing struct {
	data []bool
	cap  int
}

func newBoolRing(capacity int) *boolRing {
	return &boolRing{cap: capacity}
}

func (r *boolRing) push(v bool) {
	r.data = append(r.data, v)
	if len(r.data) > r.cap {
		r.data = r.data[1:]
	}
}

func (r *boolRing) len() int { return len(r.data) }

func (r *boolRing) trueCount() int {
	n := 0
	for _, v := range r.data {
		if v {
			n++
		}
	}
	return n
}
