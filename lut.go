package fasthdr

import "fmt"

const (
	strideU = Levels
	strideV = Levels * Levels
	strideC = Levels * Levels * Levels
)

// LUT is a complete Pixel -> Pixel table, read-only after construction.
//
// Layout is flat: index(y, u, v, ch) = y + u*256 + v*256^2 + ch*256^3,
// with channel 0 = Y, 1 = U, 2 = V.
type LUT struct {
	data []byte
}

// NewLUT wraps a raw table, which must be exactly LUTSize bytes.
// The slice is owned by the LUT afterwards.
func NewLUT(data []byte) (*LUT, error) {
	if len(data) != LUTSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrLUTSize, len(data), LUTSize)
	}
	return &LUT{data: data}, nil
}

// IdentityLUT returns a table mapping every pixel to itself.
func IdentityLUT() *LUT {
	l := &LUT{data: make([]byte, LUTSize)}
	for v := 0; v < Levels; v++ {
		for u := 0; u < Levels; u++ {
			for y := 0; y < Levels; y++ {
				l.set(uint8(y), uint8(u), uint8(v), Pixel{Y: uint8(y), U: uint8(u), V: uint8(v)})
			}
		}
	}
	return l
}

// Index returns the flat offset of channel ch for input (y, u, v).
// The uint8 arguments keep every offset within LUTSize for ch < Channels.
func Index(y, u, v uint8, ch int) int {
	return int(y) + int(u)*strideU + int(v)*strideV + ch*strideC
}

// Lookup returns the converted pixel.
func (l *LUT) Lookup(p Pixel) Pixel {
	i := Index(p.Y, p.U, p.V, 0)
	return Pixel{
		Y: l.data[i],
		U: l.data[i+strideC],
		V: l.data[i+2*strideC],
	}
}

// Bytes exposes the raw table. Callers must not modify it.
func (l *LUT) Bytes() []byte {
	return l.data
}

func (l *LUT) set(y, u, v uint8, p Pixel) {
	i := Index(y, u, v, 0)
	l.data[i] = p.Y
	l.data[i+strideC] = p.U
	l.data[i+2*strideC] = p.V
}
