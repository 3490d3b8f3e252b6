package fasthdr

import (
	"fmt"
	"math"
)

// Buffer holds one frame. At any time it is owned by exactly one pipeline
// stage; ownership moves with the queue hand-off.
type Buffer struct {
	Data []byte
	// Seq is the input order of the frame currently held.
	Seq uint64
}

// BufferPool is a fixed set of frame buffers carved from a single allocation.
// Buffers are never reallocated; the pool size bounds pipeline memory.
type BufferPool struct {
	buffers   []*Buffer
	frameSize int
}

// NewBufferPool allocates count buffers of frameSize bytes each.
func NewBufferPool(count, frameSize int) (*BufferPool, error) {
	if count < 1 {
		return nil, fmt.Errorf("buffer pool needs at least one buffer, got %d", count)
	}
	if frameSize < 1 {
		return nil, fmt.Errorf("invalid frame size %d", frameSize)
	}
	if count > math.MaxInt/frameSize {
		return nil, fmt.Errorf("buffer pool of %d frames of %d bytes overflows", count, frameSize)
	}

	backing := make([]byte, count*frameSize)
	p := &BufferPool{
		buffers:   make([]*Buffer, count),
		frameSize: frameSize,
	}
	for i := range p.buffers {
		off := i * frameSize
		p.buffers[i] = &Buffer{Data: backing[off : off+frameSize : off+frameSize]}
	}

	return p, nil
}

// Len returns the number of buffers.
func (p *BufferPool) Len() int { return len(p.buffers) }

// FrameSize returns the capacity of each buffer.
func (p *BufferPool) FrameSize() int { return p.frameSize }

// Size returns the total number of bytes held by the pool.
func (p *BufferPool) Size() int { return len(p.buffers) * p.frameSize }

// Seed pushes every buffer into q, marking them all as free.
func (p *BufferPool) Seed(q *Queue[*Buffer]) {
	for _, b := range p.buffers {
		q.Push(b)
	}
}
