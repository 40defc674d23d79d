package storage

import (
	"fmt"
	"io"
)

// ReachLimitError is returned once a MaxSizeReader's source holds more than the limit
type ReachLimitError struct {
	MaxBytes int64
}

func (e *ReachLimitError) Error() string {
	return fmt.Sprintf("reach limit of %d bytes", e.MaxBytes)
}

// NewMaxSizeReader wraps r so that reading more than maxSize bytes fails
// with a *ReachLimitError.
func NewMaxSizeReader(r io.Reader, maxSize int64) io.Reader {
	return &maxSizeReader{reader: r, limit: maxSize, remaining: maxSize}
}

type maxSizeReader struct {
	reader    io.Reader
	limit     int64
	remaining int64
}

func (r *maxSizeReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// one byte past the remaining budget is enough to detect overflow
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err := r.reader.Read(p)
	if int64(n) <= r.remaining {
		r.remaining -= int64(n)
		return n, err
	}

	n = int(r.remaining)
	r.remaining = 0
	return n, &ReachLimitError{MaxBytes: r.limit}
}
