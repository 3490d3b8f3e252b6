package fasthdr

import (
	"math"

	"golang.org/x/exp/constraints"
)

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pqInvEOTF maps a PQ-encoded value in [0, 1] to linear light in [0, 1],
// where 1 corresponds to 10000 nits.
func pqInvEOTF(v float64) float64 {
	p := math.Pow(v, 1/pqM2)
	num := math.Max(p-pqC1, 0)
	return math.Pow(num/(pqC2-pqC3*p), 1/pqM1)
}

// pqOETF is the inverse of pqInvEOTF.
func pqOETF(v float64) float64 {
	if v <= 0 {
		v = 0
	}
	p := math.Pow(v, pqM1)
	return math.Pow((pqC1+pqC2*p)/(1+pqC3*p), pqM2)
}

func toneMap(v float64) float64 {
	x := v * toneExposure
	return (x*(toneA*x+toneC*toneB)+toneD*toneE)/(x*(toneA*x+toneB)+toneD*toneF) - toneE/toneF
}

func srgbOetf(v float64) float64 {
	if v > 0.0031308 {
		return 1.055*math.Pow(v, 1.0/2.4) - 0.055
	}
	return 12.92 * v
}

func srgbInvOetf(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

func bt709Oetf(v float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v < bt709Beta:
		return 4.5 * v
	case v <= 1:
		return bt709Alpha*math.Pow(v, 0.45) - (bt709Alpha - 1)
	default:
		return 1
	}
}

func bt709InvOetf(v float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v < bt709Zeta:
		return v / 4.5
	case v <= 1:
		return math.Pow((v+(bt709Alpha-1))/bt709Alpha, 1/0.45)
	default:
		return 1
	}
}
