package fasthdr

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Registered stage names.
const (
	StagePQToLinear    = "pq-linear"
	StageLinearToPQ    = "linear-pq"
	StageToneMap       = "tonemap"
	StageLinearToSRGB  = "srgb"
	StageSRGBToLinear  = "srgb-linear"
	StageLinearToBT709 = "bt709"
	StageBT709ToLinear = "bt709-linear"
	StageBT2020ToBT709 = "bt2020-bt709"
	StageSaturation    = "saturation"
	StageGamutZebra    = "gamut-zebra"
)

// StageOptions parametrizes stages that take arguments.
type StageOptions struct {
	// Saturation is the HSL saturation factor, 1 keeps colors unchanged.
	Saturation float64
}

var stageRegistry = map[string]func(opt StageOptions) Stage{
	StagePQToLinear:    func(StageOptions) Stage { return PQToLinear() },
	StageLinearToPQ:    func(StageOptions) Stage { return LinearToPQ() },
	StageToneMap:       func(StageOptions) Stage { return ToneMap() },
	StageLinearToSRGB:  func(StageOptions) Stage { return LinearToSRGB() },
	StageSRGBToLinear:  func(StageOptions) Stage { return SRGBToLinear() },
	StageLinearToBT709: func(StageOptions) Stage { return LinearToBT709() },
	StageBT709ToLinear: func(StageOptions) Stage { return BT709ToLinear() },
	StageBT2020ToBT709: func(StageOptions) Stage { return BT2020ToBT709() },
	StageSaturation:    func(opt StageOptions) Stage { return Saturation(opt.Saturation) },
	StageGamutZebra:    func(StageOptions) Stage { return GamutZebra() },
}

// StageNames returns all registered stage names, sorted.
func StageNames() []string {
	names := make([]string, 0, len(stageRegistry))
	for name := range stageRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StageByName resolves a registered stage.
func StageByName(name string, opt StageOptions) (Stage, error) {
	mk, ok := stageRegistry[name]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return mk(opt), nil
}

// ParseStages resolves an ordered list of stage names into a Transform.
// An empty list yields DefaultTransform.
func ParseStages(names []string, opt StageOptions) (Transform, error) {
	if len(names) == 0 {
		return DefaultTransform(), nil
	}
	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		s, err := StageByName(name, opt)
		if err != nil {
			return Transform{}, err
		}
		stages = append(stages, s)
	}
	return NewTransform(stages...), nil
}

// Saturation scales HSL saturation by factor.
func Saturation(factor float64) Stage {
	return Stage{Name: StageSaturation, Fn: func(c RGB) RGB {
		if factor == 1 {
			return c
		}
		h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
		out := colorful.Hsl(h, s*factor, l)
		return RGB{R: out.R, G: out.G, B: out.B}
	}}
}

// GamutZebra paints values outside [0, 1]: blue for clipped shadows,
// red for clipped highlights.
func GamutZebra() Stage {
	return Stage{Name: StageGamutZebra, Fn: func(c RGB) RGB {
		lo := math.Min(c.R, math.Min(c.G, c.B))
		hi := math.Max(c.R, math.Max(c.G, c.B))
		if hi >= 1 {
			return RGB{R: 1}
		}
		if lo <= 0 {
			return RGB{B: 1}
		}
		return c
	}}
}
