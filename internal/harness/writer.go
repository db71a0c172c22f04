package harness

import (
	"bytes"
	"strings"
	"sync"
)

// LineWriter splits written bytes into lines and puts them into queue
// without line terminators. Incomplete line is kept until rest of it
// is written or writer is closed.
type LineWriter struct {
	mu      sync.Mutex
	partial []byte
	lines   *Queue[string]
}

func NewLineWriter(lines *Queue[string]) *LineWriter {
	return &LineWriter{
		mu:      sync.Mutex{},
		partial: nil,
		lines:   lines,
	}
}

func (w *LineWriter) offer(line []byte) {
	w.lines.Offer(strings.ReplaceAll(string(line), "\r", ""))
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i == -1 {
			break
		}

		w.offer(w.partial[:i])
		w.partial = w.partial[i+1:]
	}

	if len(w.partial) == 0 {
		w.partial = nil
	}
	return len(p), nil
}

// Close flushes unterminated last line, if any.
func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.partial) > 0 {
		w.offer(w.partial)
		w.partial = nil
	}
	return nil
}

// ChunkWriter puts every written chunk into queue as is.
type ChunkWriter struct {
	chunks *Queue[string]
}

func NewChunkWriter(chunks *Queue[string]) ChunkWriter {
	return ChunkWriter{chunks: chunks}
}

func (w ChunkWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		w.chunks.Offer(string(p))
	}
	return len(p), nil
}
