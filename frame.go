package fasthdr

// ApplyLUT converts a planar frame in place.
//
// The frame holds three planes of g.Pixels() bytes each, ordered Y, V, U.
// Pixels are independent, so the work is split across workers and joined
// before returning.
func ApplyLUT(frame []byte, g Geometry, l *LUT, workers int) {
	n := g.Pixels()
	yp := frame[0:n:n]
	vp := frame[n : 2*n : 2*n]
	up := frame[2*n : 3*n : 3*n]
	lut := l.data

	parallelFor(workers, n, func(start, end int) {
		for i := start; i < end; i++ {
			idx := Index(yp[i], up[i], vp[i], 0)
			yp[i] = lut[idx]
			up[i] = lut[idx+strideC]
			vp[i] = lut[idx+2*strideC]
		}
	})
}

// ApplyTransform converts a planar frame in place without a LUT.
func ApplyTransform(frame []byte, g Geometry, t Transform, workers int) {
	n := g.Pixels()
	yp := frame[0:n:n]
	vp := frame[n : 2*n : 2*n]
	up := frame[2*n : 3*n : 3*n]

	parallelFor(workers, n, func(start, end int) {
		for i := start; i < end; i++ {
			p := t.Apply(Pixel{Y: yp[i], U: up[i], V: vp[i]})
			yp[i], up[i], vp[i] = p.Y, p.U, p.V
		}
	})
}

// FramePixel reads pixel i of a planar Y, V, U frame.
func FramePixel(frame []byte, g Geometry, i int) Pixel {
	n := g.Pixels()
	return Pixel{Y: frame[i], V: frame[n+i], U: frame[2*n+i]}
}

// SetFramePixel writes pixel i of a planar Y, V, U frame.
func SetFramePixel(frame []byte, g Geometry, i int, p Pixel) {
	n := g.Pixels()
	frame[i], frame[n+i], frame[2*n+i] = p.Y, p.V, p.U
}
