package fasthdr

// Sample domain.
const (
	Bits      = 8
	Levels    = 1 << Bits
	MaxSample = Levels - 1
	Channels  = 3
)

// LUTSize is the exact byte size of a complete LUT blob.
const LUTSize = Levels * Levels * Levels * Channels

const (
	// DefaultBuffers is the default number of frame buffers in the pool.
	DefaultBuffers = 16
)

// ST 2084 (PQ) constants.
const (
	pqC1 = 0.8359375
	pqC2 = 18.8515625
	pqC3 = 18.6875
	pqM1 = 0.1593017578125
	pqM2 = 78.84375
)

// Filmic tone curve constants.
const (
	toneExposure = 150.0
	toneA        = 0.15
	toneB        = 0.50
	toneC        = 0.10
	toneD        = 0.20
	toneE        = 0.02
	toneF        = 0.30
)

// BT.709 OETF constants.
const (
	bt709Alpha = 1.099
	bt709Beta  = 0.018
	bt709Zeta  = 0.081
)
