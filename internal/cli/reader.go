package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Reader provides context-aware line reading so the review loop can be
// interrupted cleanly.
type Reader struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewReader wraps an input stream for interruptible reads.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &Reader{reader: bufio.NewReader(r)}
}

// ReadLine reads one trimmed line, respecting context cancellation. The
// underlying read keeps running after cancellation; the caller just stops
// waiting for it.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
