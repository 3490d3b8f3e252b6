package fasthdr

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// frameSource produces frames on demand and reports how far ahead of the
// writer the reader got.
type frameSource struct {
	frameSize int
	frames    int // negative means endless
	produced  int
	offset    int
	written   *atomic.Int64
	maxAhead  int64
}

func (s *frameSource) Read(p []byte) (int, error) {
	if s.frames >= 0 && s.produced >= s.frames {
		return 0, io.EOF
	}
	if s.offset == 0 && s.written != nil {
		if ahead := int64(s.produced) - s.written.Load() + 1; ahead > s.maxAhead {
			s.maxAhead = ahead
		}
	}
	n := s.frameSize - s.offset
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = byte(s.produced + s.offset + i)
	}
	s.offset += n
	if s.offset == s.frameSize {
		s.offset = 0
		s.produced++
	}
	return n, nil
}

type slowWriter struct {
	delay   time.Duration
	written atomic.Int64
	failAt  int64
	onWrite func(n int64)
	flushed int
	buf     bytes.Buffer
}

var errBrokenPipe = errors.New("broken pipe")

func (w *slowWriter) Write(p []byte) (int, error) {
	if w.failAt > 0 && w.written.Load() >= w.failAt {
		return 0, errBrokenPipe
	}
	time.Sleep(w.delay)
	w.buf.Write(p)
	n := w.written.Add(1)
	if w.onWrite != nil {
		w.onWrite(n)
	}
	return len(p), nil
}

func (w *slowWriter) Flush() error {
	w.flushed++
	return nil
}

func newTestPipeline(t *testing.T, g Geometry, l *LUT, buffers int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(g, l, func(o *Options) {
		o.Buffers = buffers
		o.Workers = 3
		o.Logger = quietLogger()
	})
	require.NoError(t, err)
	return p
}

func TestPipelinePreservesOrder(t *testing.T) {
	g := Geometry{Width: 4, Height: 2}
	const frames = 500

	in := make([]byte, 0, frames*g.FrameSize())
	frame := make([]byte, g.FrameSize())
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < frames; i++ {
		rnd.Read(frame)
		binary.LittleEndian.PutUint32(frame, uint32(i))
		in = append(in, frame...)
	}

	var out bytes.Buffer
	st, err := newTestPipeline(t, g, identityLUT(), 3).Run(context.Background(), bytes.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(frames), st.FramesRead)
	assert.Equal(t, int64(frames), st.FramesWritten)
	assert.Equal(t, int64(len(in)), st.BytesWritten)
	assert.LessOrEqual(t, st.MaxInFlight, int64(3))

	got := out.Bytes()
	require.Len(t, got, len(in))
	for i := 0; i < frames; i++ {
		tag := binary.LittleEndian.Uint32(got[i*g.FrameSize():])
		if tag != uint32(i) {
			t.Fatalf("frame %d out of order: got tag %d", i, tag)
		}
	}
	assert.True(t, bytes.Equal(in, got))
}

func TestPipelineMatchesDirectTransform(t *testing.T) {
	l := mustDefaultLUT(t)
	g := Geometry{Width: 2, Height: 1}
	tr := DefaultTransform()

	pixels := []Pixel{{Y: 16, U: 128, V: 128}, {Y: 120, U: 110, V: 140}, {Y: 235, U: 90, V: 200}}
	var in []byte
	for _, px := range pixels {
		frame := make([]byte, g.FrameSize())
		SetFramePixel(frame, g, 0, px)
		SetFramePixel(frame, g, 1, px)
		in = append(in, frame...)
	}

	want := append([]byte(nil), in...)
	for i := 0; i < len(pixels); i++ {
		ApplyTransform(want[i*g.FrameSize():(i+1)*g.FrameSize()], g, tr, 1)
	}

	var out bytes.Buffer
	_, err := newTestPipeline(t, g, l, 2).Run(context.Background(), bytes.NewReader(in), &out)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, out.Bytes()), "pipeline output differs from direct transform")

	first := out.Bytes()[:g.FrameSize()]
	assert.Equal(t, tr.Apply(pixels[0]), FramePixel(first, g, 0))
	assert.Equal(t, tr.Apply(pixels[0]), FramePixel(first, g, 1))
}

func TestPipelineBackpressure(t *testing.T) {
	g := Geometry{Width: 8, Height: 8}
	const buffers = 4

	w := &slowWriter{delay: 2 * time.Millisecond}
	src := &frameSource{frameSize: g.FrameSize(), frames: 40, written: &w.written}

	st, err := newTestPipeline(t, g, identityLUT(), buffers).Run(context.Background(), src, w)
	require.NoError(t, err)
	assert.Equal(t, int64(40), st.FramesWritten)
	assert.LessOrEqual(t, src.maxAhead, int64(buffers), "reader ran ahead of writer beyond the pool")
	assert.LessOrEqual(t, st.MaxInFlight, int64(buffers))
	assert.Equal(t, buffers, st.Buffers)
	assert.Equal(t, 1, w.flushed)
}

func TestPipelineTruncatedInput(t *testing.T) {
	g := Geometry{Width: 4, Height: 4}
	in := make([]byte, 2*g.FrameSize()+10)

	var out bytes.Buffer
	st, err := newTestPipeline(t, g, identityLUT(), 2).Run(context.Background(), bytes.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.FramesWritten)
	assert.Equal(t, int64(10), st.TruncatedBytes)
	assert.Equal(t, 2*g.FrameSize(), out.Len())

	p, err := NewPipeline(g, identityLUT(), func(o *Options) {
		o.Strict = true
		o.Logger = quietLogger()
	})
	require.NoError(t, err)
	out.Reset()
	st, err = p.Run(context.Background(), bytes.NewReader(in), &out)
	assert.ErrorIs(t, err, ErrTruncatedFrame)
	assert.Equal(t, int64(10), st.TruncatedBytes)
}

func TestPipelineEmptyInput(t *testing.T) {
	g := Geometry{Width: 2, Height: 2}
	var out bytes.Buffer
	st, err := newTestPipeline(t, g, identityLUT(), 2).Run(context.Background(), bytes.NewReader(nil), &out)
	require.NoError(t, err)
	assert.Zero(t, st.FramesRead)
	assert.Zero(t, out.Len())
}

func TestPipelineWriteError(t *testing.T) {
	g := Geometry{Width: 4, Height: 4}
	w := &slowWriter{failAt: 3}
	src := &frameSource{frameSize: g.FrameSize(), frames: -1}
	p := newTestPipeline(t, g, identityLUT(), 4)

	done := make(chan struct{})
	var (
		st  Stats
		err error
	)
	go func() {
		defer close(done)
		st, err = p.Run(context.Background(), src, w)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not shut down after write error")
	}
	assert.ErrorIs(t, err, errBrokenPipe)
	assert.Equal(t, int64(3), st.FramesWritten)
	assert.Zero(t, w.flushed)
}

// gatedSource serves open frames, then blocks every further read until gate
// is closed.
type gatedSource struct {
	open  int64
	gate  <-chan struct{}
	reads atomic.Int64
}

func (s *gatedSource) Read(p []byte) (int, error) {
	if s.reads.Add(1) > s.open {
		<-s.gate
	}
	return len(p), nil
}

// errorSignal closes ch on the first error-level record.
type errorSignal struct {
	once sync.Once
	ch   chan struct{}
}

func (h *errorSignal) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelError }

func (h *errorSignal) Handle(context.Context, slog.Record) error {
	h.once.Do(func() { close(h.ch) })
	return nil
}

func (h *errorSignal) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *errorSignal) WithGroup(string) slog.Handler { return h }

func TestPipelineStopsReadingAfterFailure(t *testing.T) {
	g := Geometry{Width: 4, Height: 4}
	h := &errorSignal{ch: make(chan struct{})}
	src := &gatedSource{open: 2, gate: h.ch}
	w := &slowWriter{failAt: 1}

	p, err := NewPipeline(g, identityLUT(), func(o *Options) {
		o.Buffers = 16
		o.Logger = slog.New(h)
	})
	require.NoError(t, err)

	st, err := p.Run(context.Background(), src, w)
	assert.ErrorIs(t, err, errBrokenPipe)
	assert.Equal(t, int64(1), st.FramesWritten)
	// The read blocked when the writer failed is the last one.
	assert.Equal(t, int64(3), src.reads.Load())
}

func TestRunIgnoresFailureAfterFinish(t *testing.T) {
	rn := &run{log: quietLogger(), free: NewQueue[*Buffer]()}
	rn.free.Push(&Buffer{})
	rn.finish()

	rn.fail(context.Canceled)
	assert.NoError(t, rn.firstErr())
	assert.False(t, rn.aborted.Load())

	_, ok := rn.free.Pop()
	assert.True(t, ok, "free queue must stay open")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestPipelineReadError(t *testing.T) {
	g := Geometry{Width: 2, Height: 2}
	var out bytes.Buffer
	_, err := newTestPipeline(t, g, identityLUT(), 2).Run(context.Background(), failingReader{}, &out)
	assert.ErrorContains(t, err, "device gone")
}

func TestPipelineCancel(t *testing.T) {
	g := Geometry{Width: 4, Height: 4}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &slowWriter{delay: time.Millisecond, onWrite: func(n int64) {
		if n == 5 {
			cancel()
		}
	}}
	src := &frameSource{frameSize: g.FrameSize(), frames: -1}

	st, err := newTestPipeline(t, g, identityLUT(), 3).Run(ctx, src, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, st.FramesWritten, int64(5))
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(Geometry{Width: 0, Height: 4}, identityLUT())
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = NewPipeline(Geometry{Width: 4, Height: 4}, nil)
	assert.Error(t, err)

	_, err = NewPipeline(Geometry{Width: 4, Height: 4}, identityLUT(), func(o *Options) { o.Buffers = 0 })
	assert.Error(t, err)
}

func TestApplyLUTWorkers(t *testing.T) {
	l := mustDefaultLUT(t)
	g := Geometry{Width: 64, Height: 33}

	frame := make([]byte, g.FrameSize())
	rand.New(rand.NewSource(7)).Read(frame)

	a := append([]byte(nil), frame...)
	b := append([]byte(nil), frame...)
	ApplyLUT(a, g, l, 1)
	ApplyLUT(b, g, l, 8)
	require.True(t, bytes.Equal(a, b))

	for i := 0; i < g.Pixels(); i += 97 {
		assert.Equal(t, l.Lookup(FramePixel(frame, g, i)), FramePixel(a, g, i))
	}
}

func BenchmarkPipeline1080p(b *testing.B) {
	g := Geometry{Width: 1920, Height: 1080}
	p, err := NewPipeline(g, identityLUT(), func(o *Options) { o.Logger = quietLogger() })
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(g.FrameSize()))
	b.ResetTimer()
	src := &frameSource{frameSize: g.FrameSize(), frames: b.N}
	if _, err := p.Run(context.Background(), src, io.Discard); err != nil {
		b.Fatal(err)
	}
}
