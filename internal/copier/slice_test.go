package copier

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pcp/internal/model"
)

// memWriterAt is an in-memory io.WriterAt over a fixed-size buffer.
type memWriterAt struct {
	buf []byte
}

func (w *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > int64(len(w.buf)) {
		return 0, fmt.Errorf("write out of bounds: off %d len %d cap %d", off, len(p), len(w.buf))
	}
	return copy(w.buf[off:], p), nil
}

// errWriterAt fails every write after the first failAfter bytes.
type errWriterAt struct {
	inner     memWriterAt
	failAfter int64
	written   int64
	err       error
}

func (w *errWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if w.written >= w.failAfter {
		return 0, w.err
	}
	n, err := w.inner.WriteAt(p, off)
	w.written += int64(n)
	return n, err
}

// errReaderAt fails reads whose offset falls inside [failFrom, failTo).
type errReaderAt struct {
	inner    *bytes.Reader
	failFrom int64
	failTo   int64
	err      error
}

func (r *errReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.failFrom && off < r.failTo {
		return 0, r.err
	}
	return r.inner.ReadAt(p, off)
}

func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestCopySlice(t *testing.T) {
	src := patternBytes(100)

	t.Run("Copies only its own range", func(t *testing.T) {
		assert := assert.New(t)

		dst := &memWriterAt{buf: bytes.Repeat([]byte{0xff}, 100)}
		rng := model.SliceRange{Index: 1, Start: 30, End: 70}

		res := copySlice(bytes.NewReader(src), dst, rng, 16, nil)

		assert.Equal(model.SliceStatusSuccess, res.Status)
		assert.Equal(int64(40), res.BytesCopied)
		assert.Equal(1, res.Index)
		assert.NoError(res.Err)

		// Assigned range matches the source.
		assert.Equal(src[30:70], dst.buf[30:70])
		// Bytes outside the range are untouched.
		assert.Equal(bytes.Repeat([]byte{0xff}, 30), dst.buf[:30])
		assert.Equal(bytes.Repeat([]byte{0xff}, 30), dst.buf[70:])
	})

	t.Run("Empty range succeeds without writing", func(t *testing.T) {
		assert := assert.New(t)

		dst := &memWriterAt{buf: bytes.Repeat([]byte{0xff}, 10)}
		res := copySlice(bytes.NewReader(nil), dst, model.SliceRange{Index: 0, Start: 0, End: 0}, 16, nil)

		assert.Equal(model.SliceStatusSuccess, res.Status)
		assert.Equal(int64(0), res.BytesCopied)
		assert.Equal(bytes.Repeat([]byte{0xff}, 10), dst.buf)
	})

	t.Run("Progress is cumulative per chunk and reaches the slice length", func(t *testing.T) {
		assert := assert.New(t)

		dst := &memWriterAt{buf: make([]byte, 100)}
		rng := model.SliceRange{Index: 2, Start: 10, End: 20}

		var gotIndexes []int
		var gotBytes []int64
		res := copySlice(bytes.NewReader(src), dst, rng, 4, func(index int, bytesCopied int64) {
			gotIndexes = append(gotIndexes, index)
			gotBytes = append(gotBytes, bytesCopied)
		})

		require.Equal(t, model.SliceStatusSuccess, res.Status)
		assert.Equal([]int{2, 2, 2}, gotIndexes)
		assert.Equal([]int64{4, 8, 10}, gotBytes)
	})

	t.Run("Source ending early is a short read", func(t *testing.T) {
		assert := assert.New(t)

		dst := &memWriterAt{buf: make([]byte, 200)}
		// The source only has 100 bytes, the range demands up to 150.
		rng := model.SliceRange{Index: 0, Start: 90, End: 150}

		res := copySlice(bytes.NewReader(src), dst, rng, 16, nil)

		assert.Equal(model.SliceStatusFailed, res.Status)
		assert.ErrorIs(res.Err, model.ErrShortRead)
		assert.Equal(int64(10), res.BytesCopied)
		assert.Equal(int64(100), res.FailOffset)
		// What was available got copied anyway.
		assert.Equal(src[90:100], dst.buf[90:100])
	})

	t.Run("Read error stops the slice with its offset", func(t *testing.T) {
		assert := assert.New(t)

		readErr := errors.New("disk on fire")
		srcR := &errReaderAt{inner: bytes.NewReader(src), failFrom: 50, failTo: 60, err: readErr}
		dst := &memWriterAt{buf: make([]byte, 100)}
		rng := model.SliceRange{Index: 3, Start: 40, End: 80}

		res := copySlice(srcR, dst, rng, 10, nil)

		assert.Equal(model.SliceStatusFailed, res.Status)
		assert.ErrorIs(res.Err, model.ErrIOFailure)
		assert.Equal(int64(10), res.BytesCopied)
		assert.Equal(int64(50), res.FailOffset)
	})

	t.Run("Write error stops the slice", func(t *testing.T) {
		assert := assert.New(t)

		writeErr := errors.New("no space left")
		dst := &errWriterAt{inner: memWriterAt{buf: make([]byte, 100)}, failAfter: 8, err: writeErr}
		rng := model.SliceRange{Index: 0, Start: 0, End: 32}

		res := copySlice(bytes.NewReader(src), dst, rng, 8, nil)

		assert.Equal(model.SliceStatusFailed, res.Status)
		assert.ErrorIs(res.Err, model.ErrIOFailure)
		assert.Equal(int64(8), res.BytesCopied)
		assert.Equal(int64(8), res.FailOffset)
	})
}
