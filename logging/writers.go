package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleWriter writes log entries to the console (stdout/stderr)
type ConsoleWriter struct {
	mu     sync.Mutex
	writer *os.File
}

// NewConsoleWriter creates a new console writer that writes to stdout
func NewConsoleWriter() *ConsoleWriter {
	return &ConsoleWriter{
		writer: os.Stdout,
	}
}

// NewConsoleWriterWithFile creates a new console writer with a specific file
func NewConsoleWriterWithFile(file *os.File) *ConsoleWriter {
	return &ConsoleWriter{
		writer: file,
	}
}

// Write writes data to the console
func (w *ConsoleWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.writer.Write(data)
	return err
}

// Flush is a no-op; terminals are unbuffered
func (w *ConsoleWriter) Flush() error {
	return nil
}

// Close closes the console writer
func (w *ConsoleWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// stdout/stderr are shared
	if w.writer == os.Stdout || w.writer == os.Stderr {
		return nil
	}

	return w.writer.Close()
}

// GetName returns the name of the writer
func (w *ConsoleWriter) GetName() string {
	return "console"
}

// FileWriter appends log entries to a file
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	filePath string
}

// NewFileWriter creates a new file writer
func NewFileWriter(filePath string) (*FileWriter, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &FileWriter{
		file:     file,
		filePath: filePath,
	}, nil
}

// Write writes data to the file
func (w *FileWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.file.Write(data)
	return err
}

// Flush flushes the file writer
func (w *FileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Sync()
}

// Close closes the file writer
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Close()
}

// GetName returns the name of the writer
func (w *FileWriter) GetName() string {
	return fmt.Sprintf("file:%s", w.filePath)
}

// StreamWriter adapts any io.Writer, e.g. a readline terminal
type StreamWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStreamWriter wraps out
func NewStreamWriter(out io.Writer) *StreamWriter {
	return &StreamWriter{out: out}
}

// Write writes data to the underlying stream
func (w *StreamWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.out.Write(data)
	return err
}

// Flush is a no-op
func (w *StreamWriter) Flush() error { return nil }

// Close is a no-op; the stream belongs to the caller
func (w *StreamWriter) Close() error { return nil }

// GetName returns the name of the writer
func (w *StreamWriter) GetName() string {
	return "stream"
}

// BufferWriter keeps log output in memory
type BufferWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewBufferWriter creates an empty buffer writer
func NewBufferWriter() *BufferWriter {
	return &BufferWriter{}
}

// Write appends data to the buffer
func (w *BufferWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.buf.Write(data)
	return err
}

// String returns everything written so far
func (w *BufferWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.buf.String()
}

// Flush is a no-op
func (w *BufferWriter) Flush() error { return nil }

// Close is a no-op
func (w *BufferWriter) Close() error { return nil }

// GetName returns the name of the writer
func (w *BufferWriter) GetName() string {
	return "buffer"
}

// MultiWriter writes to multiple writers
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a new multi writer
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes data to every writer and returns the first error
func (w *MultiWriter) Write(data []byte) error {
	var first error
	for _, writer := range w.writers {
		if err := writer.Write(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Flush flushes every writer
func (w *MultiWriter) Flush() error {
	var first error
	for _, writer := range w.writers {
		if err := writer.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every writer
func (w *MultiWriter) Close() error {
	var first error
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GetName returns the name of the writer
func (w *MultiWriter) GetName() string {
	return "multi"
}

// DiscardWriter drops all log entries
type DiscardWriter struct{}

// NewDiscardWriter creates a new discard writer
func NewDiscardWriter() *DiscardWriter {
	return &DiscardWriter{}
}

// Write drops data
func (w *DiscardWriter) Write(data []byte) error { return nil }

// Flush is a no-op
func (w *DiscardWriter) Flush() error { return nil }

// Close is a no-op
func (w *DiscardWriter) Close() error { return nil }

// GetName returns the name of the writer
func (w *DiscardWriter) GetName() string {
	return "discard"
}
