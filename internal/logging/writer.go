package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
)

// Writer forwards line-oriented subprocess output (typically stderr of a model CLI) to slog.
// Partial lines are buffered until a newline or Flush.
type Writer struct {
	logger *slog.Logger
	msg    string
	attrs  []any

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewWriter returns a Writer that logs each line at debug level with the given message and attributes.
func NewWriter(logger *slog.Logger, msg string, attrs ...any) *Writer {
	if msg == "" {
		msg = "command output"
	}
	return &Writer{logger: logger, msg: msg, attrs: attrs}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *Writer) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || w.logger == nil {
		return
	}
	w.logger.Debug(w.msg, append([]any{"line", line}, w.attrs...)...)
}
