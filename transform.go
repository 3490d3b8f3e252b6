package fasthdr

// Stage is one step of the color chain, operating on normalized RGB.
type Stage struct {
	Name string
	Fn   func(RGB) RGB
}

// Transform maps YUV pixels through decode, Stages in order, and encode.
// A zero Transform is the plain YUV -> RGB -> YUV round trip.
type Transform struct {
	Stages []Stage
}

// DefaultTransform is the PQ HDR to SDR chain: inverse PQ, tone map, sRGB OETF.
func DefaultTransform() Transform {
	return NewTransform(PQToLinear(), ToneMap(), LinearToSRGB())
}

// NewTransform creates a transform from stages.
func NewTransform(stages ...Stage) Transform {
	return Transform{Stages: stages}
}

// Apply converts a single pixel. It is pure and defined for every input.
func (t Transform) Apply(p Pixel) Pixel {
	c := yuvToRGB(p)
	for _, s := range t.Stages {
		c = s.Fn(c)
	}
	return rgbToYUV(c)
}

// Names lists stage names in application order.
func (t Transform) Names() []string {
	names := make([]string, 0, len(t.Stages))
	for _, s := range t.Stages {
		names = append(names, s.Name)
	}
	return names
}

func perChannel(name string, fn func(float64) float64) Stage {
	return Stage{Name: name, Fn: func(c RGB) RGB { return c.each(fn) }}
}

// PQToLinear decodes PQ (ST 2084) to linear light.
func PQToLinear() Stage { return perChannel(StagePQToLinear, pqInvEOTF) }

// LinearToPQ encodes linear light with the PQ curve.
func LinearToPQ() Stage { return perChannel(StageLinearToPQ, pqOETF) }

// ToneMap applies the filmic curve to each channel independently.
// There is no luminance normalization, so hues may shift in highlights.
func ToneMap() Stage { return perChannel(StageToneMap, toneMap) }

// LinearToSRGB applies the sRGB OETF.
func LinearToSRGB() Stage { return perChannel(StageLinearToSRGB, srgbOetf) }

// SRGBToLinear applies the inverse sRGB OETF.
func SRGBToLinear() Stage { return perChannel(StageSRGBToLinear, srgbInvOetf) }

// LinearToBT709 applies the BT.709 OETF.
func LinearToBT709() Stage { return perChannel(StageLinearToBT709, bt709Oetf) }

// BT709ToLinear applies the inverse BT.709 OETF.
func BT709ToLinear() Stage { return perChannel(StageBT709ToLinear, bt709InvOetf) }

// BT2020ToBT709 converts linear BT.2020 primaries to BT.709.
func BT2020ToBT709() Stage {
	return Stage{Name: StageBT2020ToBT709, Fn: bt2020ToBT709.apply}
}
