package fasthdr

import "math"

// Fixed BT.601-style matrices used by the conversion chain.

func yuvToRGB(p Pixel) RGB {
	c := float64(p.Y)
	d := float64(p.U) - 128
	e := float64(p.V) - 128

	return RGB{
		R: clamp(c+1.370705*e, 0, MaxSample) / MaxSample,
		G: clamp(c-0.698001*d-0.337633*e, 0, MaxSample) / MaxSample,
		B: clamp(c+1.732446*d, 0, MaxSample) / MaxSample,
	}
}

func rgbToYUV(c RGB) Pixel {
	r := c.R * 255
	g := c.G * 255
	b := c.B * 255

	return Pixel{
		Y: encodeSample(0.257*r + 0.504*g + 0.098*b + 16),
		U: encodeSample(-0.148*r - 0.291*g + 0.439*b + 128),
		V: encodeSample(0.439*r - 0.368*g - 0.071*b + 128),
	}
}

// encodeSample clamps and truncates toward zero. NaN maps to 0.
func encodeSample(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(clamp(v, 0, MaxSample))
}

type matrix3 [9]float64

func (m matrix3) apply(c RGB) RGB {
	return RGB{
		R: m[0]*c.R + m[1]*c.G + m[2]*c.B,
		G: m[3]*c.R + m[4]*c.G + m[5]*c.B,
		B: m[6]*c.R + m[7]*c.G + m[8]*c.B,
	}
}

// Linear BT.2020 to linear BT.709 primaries.
var bt2020ToBT709 = matrix3{
	1.6605, -0.5876, -0.0728,
	-0.1246, 1.1329, -0.0083,
	-0.0182, -0.1006, 1.1187,
}
