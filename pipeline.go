package fasthdr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Options controls the streaming pipeline.
type Options struct {
	// Buffers is the number of frame buffers in the pool, default DefaultBuffers.
	Buffers int
	// Workers is the per-frame fan-out of the processor, GOMAXPROCS if <= 0.
	Workers int
	// Strict makes an input that ends mid-frame an error instead of a clean end.
	Strict bool
	Logger *slog.Logger
}

// Stats summarizes a pipeline run.
type Stats struct {
	FramesRead     int64
	FramesWritten  int64
	BytesWritten   int64
	TruncatedBytes int64
	Buffers        int
	// MaxInFlight is the highest number of buffers simultaneously taken
	// out of the free queue. It never exceeds Buffers.
	MaxInFlight int64
}

// Pipeline streams frames through a LUT using three stages:
// reader, processor and writer, connected by FIFO queues over a fixed
// buffer pool.
type Pipeline struct {
	geom Geometry
	lut  *LUT
	opt  Options
}

// NewPipeline creates a pipeline for frames of the given geometry.
func NewPipeline(geom Geometry, lut *LUT, opts ...func(o *Options)) (*Pipeline, error) {
	if _, err := NewGeometry(geom.Width, geom.Height); err != nil {
		return nil, err
	}
	if lut == nil {
		return nil, errors.New("lut is required")
	}

	opt := Options{
		Buffers: DefaultBuffers,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.Buffers < 1 {
		return nil, fmt.Errorf("invalid buffer count %d", opt.Buffers)
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	return &Pipeline{geom: geom, lut: lut, opt: opt}, nil
}

// Geometry returns the frame geometry.
func (p *Pipeline) Geometry() Geometry { return p.geom }

// Run streams frames from r to w until r is exhausted, ctx is cancelled or
// an I/O error occurs. Frames are written in the order they were read.
//
// A reader blocked inside r.Read is not interrupted by ctx; cancellation
// takes effect at the next frame boundary.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	pool, err := NewBufferPool(p.opt.Buffers, p.geom.FrameSize())
	if err != nil {
		return Stats{}, err
	}

	rn := &run{
		p:           p,
		log:         p.opt.Logger,
		free:        NewQueue[*Buffer](),
		filled:      NewQueue[*Buffer](),
		transformed: NewQueue[*Buffer](),
	}
	pool.Seed(rn.free)

	stop := context.AfterFunc(ctx, func() {
		rn.fail(ctx.Err())
	})

	rn.log.Debug("pipeline: starting",
		"geometry", p.geom.String(),
		"buffers", pool.Len(),
		"pool_bytes", pool.Size())

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		rn.read(r)
	}()
	go func() {
		defer wg.Done()
		rn.process()
	}()
	go func() {
		defer wg.Done()
		rn.write(w)
	}()
	wg.Wait()
	stop()

	st := Stats{
		FramesRead:     rn.framesRead.Load(),
		FramesWritten:  rn.framesWritten.Load(),
		BytesWritten:   rn.bytesWritten.Load(),
		TruncatedBytes: rn.truncated.Load(),
		Buffers:        pool.Len(),
		MaxInFlight:    rn.maxInFlight.Load(),
	}

	rn.log.Debug("pipeline: finished",
		"frames_read", st.FramesRead,
		"frames_written", st.FramesWritten,
		"max_in_flight", st.MaxInFlight)

	return st, rn.firstErr()
}

type run struct {
	p   *Pipeline
	log *slog.Logger

	free        *Queue[*Buffer]
	filled      *Queue[*Buffer]
	transformed *Queue[*Buffer]

	mu      sync.Mutex
	err     error
	done    bool
	aborted atomic.Bool

	framesRead    atomic.Int64
	framesWritten atomic.Int64
	bytesWritten  atomic.Int64
	truncated     atomic.Int64
	inFlight      atomic.Int64
	maxInFlight   atomic.Int64
}

// fail records the first error, closes the free queue and makes the reader
// drop any buffer it still pops. The shutdown then cascades through the
// filled and transformed queues. Errors arriving after the writer has exited
// are ignored.
func (rn *run) fail(err error) {
	rn.mu.Lock()
	if rn.err != nil || rn.done {
		rn.mu.Unlock()
		return
	}
	rn.err = err
	rn.mu.Unlock()

	rn.aborted.Store(true)
	rn.log.Error("pipeline: aborting", "error", err)
	rn.free.Close()
}

// finish marks the run complete. The writer is the last stage to exit.
func (rn *run) finish() {
	rn.mu.Lock()
	rn.done = true
	rn.mu.Unlock()
}

func (rn *run) firstErr() error {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	return rn.err
}

func (rn *run) acquire() {
	n := rn.inFlight.Add(1)
	for {
		m := rn.maxInFlight.Load()
		if n <= m || rn.maxInFlight.CompareAndSwap(m, n) {
			return
		}
	}
}

func (rn *run) release() {
	rn.inFlight.Add(-1)
}

func (rn *run) read(src io.Reader) {
	defer rn.filled.Close()

	var seq uint64
	for {
		buf, ok := rn.free.Pop()
		if !ok || rn.aborted.Load() {
			return
		}
		rn.acquire()

		n, err := io.ReadFull(src, buf.Data)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			rn.log.Debug("pipeline: end of input", "frames", seq)
			return
		case errors.Is(err, io.ErrUnexpectedEOF):
			rn.truncated.Store(int64(n))
			rn.log.Warn("pipeline: input ended mid-frame, dropping partial frame",
				"frame", seq,
				"bytes", n,
				"frame_size", len(buf.Data))
			if rn.p.opt.Strict {
				rn.fail(fmt.Errorf("%w: frame %d has %d of %d bytes", ErrTruncatedFrame, seq, n, len(buf.Data)))
			}
			return
		default:
			rn.fail(fmt.Errorf("read frame %d: %w", seq, err))
			return
		}

		buf.Seq = seq
		seq++
		rn.framesRead.Add(1)
		rn.filled.Push(buf)
	}
}

func (rn *run) process() {
	defer rn.transformed.Close()

	for {
		buf, ok := rn.filled.Pop()
		if !ok {
			return
		}
		if rn.aborted.Load() {
			continue
		}

		ApplyLUT(buf.Data, rn.p.geom, rn.p.lut, rn.p.opt.Workers)
		rn.transformed.Push(buf)
	}
}

func (rn *run) write(dst io.Writer) {
	defer rn.finish()

	var next uint64
	for {
		buf, ok := rn.transformed.Pop()
		if !ok {
			break
		}
		if rn.aborted.Load() {
			continue
		}
		if buf.Seq != next {
			rn.fail(fmt.Errorf("frame order violated: got %d, want %d", buf.Seq, next))
			continue
		}
		next++

		if _, err := dst.Write(buf.Data); err != nil {
			rn.fail(fmt.Errorf("write frame %d: %w", buf.Seq, err))
			continue
		}
		rn.framesWritten.Add(1)
		rn.bytesWritten.Add(int64(len(buf.Data)))

		rn.release()
		rn.free.Push(buf)
	}

	if f, ok := dst.(interface{ Flush() error }); ok && !rn.aborted.Load() {
		if err := f.Flush(); err != nil {
			rn.fail(fmt.Errorf("flush output: %w", err))
		}
	}
}
