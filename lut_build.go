package fasthdr

import (
	"context"
	"sync/atomic"
)

// BuildLUT evaluates t over the whole input domain.
//
// The V dimension is split across workers (GOMAXPROCS if workers <= 0); each
// worker owns a disjoint range of V slices, so the table is identical for any
// worker count.
func BuildLUT(ctx context.Context, t Transform, workers int) (*LUT, error) {
	l := &LUT{data: make([]byte, LUTSize)}

	var cancelled atomic.Bool
	parallelFor(workers, Levels, func(start, end int) {
		for v := start; v < end; v++ {
			if ctx.Err() != nil {
				cancelled.Store(true)
				return
			}
			for u := 0; u < Levels; u++ {
				for y := 0; y < Levels; y++ {
					yy, uu, vv := uint8(y), uint8(u), uint8(v)
					l.set(yy, uu, vv, t.Apply(Pixel{Y: yy, U: uu, V: vv}))
				}
			}
		}
	})
	if cancelled.Load() {
		return nil, ctx.Err()
	}

	return l, nil
}
