package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	line string
	err  error
}

// LineReader reads trimmed lines from a terminal without blocking past
// context cancellation. One goroutine owns the underlying reader, so a line
// typed after a cancelled read is delivered to the next call instead of
// being dropped.
type LineReader struct {
	src   io.Reader
	once  sync.Once
	lines chan lineResult
}

// NewLineReader wraps r. Reading starts on the first ReadLine.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{src: r, lines: make(chan lineResult)}
}

func (r *LineReader) pump() {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- lineResult{line: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	r.lines <- lineResult{err: err}
	close(r.lines)
}

// ReadLine returns the next line with surrounding whitespace removed. A
// final line without a newline is returned normally; io.EOF follows it.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
