package fasthdr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdExt marks LUT files stored with zstd compression.
const ZstdExt = ".zst"

// ReadLUT reads a raw headerless LUT blob of exactly LUTSize bytes.
func ReadLUT(r io.Reader) (*LUT, error) {
	data := make([]byte, LUTSize)
	n, err := io.ReadFull(r, data)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLUTSize, n, LUTSize)
		}
		return nil, err
	}

	var extra [1]byte
	if n, err := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("%w: trailing data after %d bytes", ErrLUTSize, LUTSize)
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return NewLUT(data)
}

// WriteLUT writes the raw LUT blob.
func WriteLUT(w io.Writer, l *LUT) error {
	_, err := w.Write(l.data)
	return err
}

// ReadLUTFile loads a LUT from path, decompressing it when the name ends with ZstdExt.
func ReadLUTFile(path string) (*LUT, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ZstdExt) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	l, err := ReadLUT(r)
	if err != nil {
		return nil, fmt.Errorf("read lut %s: %w", path, err)
	}
	return l, nil
}

// WriteLUTFile stores a LUT at path, compressing it when the name ends with ZstdExt.
func WriteLUTFile(path string, l *LUT) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if strings.HasSuffix(path, ZstdExt) {
		enc, err := zstd.NewWriter(bw)
		if err != nil {
			return fmt.Errorf("zstd encode: %w", err)
		}
		if err := WriteLUT(enc, l); err != nil {
			_ = enc.Close()
			return fmt.Errorf("write lut %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("zstd encode: %w", err)
		}
	} else if err := WriteLUT(bw, l); err != nil {
		return fmt.Errorf("write lut %s: %w", path, err)
	}

	return bw.Flush()
}
