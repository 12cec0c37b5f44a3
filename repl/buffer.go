package repl

import (
	"strings"

	"github.com/Figliar/extension-plus-API/syntax/gopherlua"
)

// ChunkBuffer collects the lines of one Lua chunk until every block, bracket
// and long string it opens is closed
type ChunkBuffer struct {
	lines []string
}

// NewChunkBuffer creates an empty buffer
func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{}
}

// Add appends a line
func (b *ChunkBuffer) Add(line string) {
	b.lines = append(b.lines, line)
}

// Source joins the buffered lines into one chunk
func (b *ChunkBuffer) Source() string {
	return strings.Join(b.lines, "\n")
}

// Complete reports whether the buffered chunk can be lowered
func (b *ChunkBuffer) Complete() bool {
	return !gopherlua.Incomplete([]byte(b.Source()))
}

// Pending reports whether lines are waiting for the rest of their chunk
func (b *ChunkBuffer) Pending() bool {
	return len(b.lines) > 0
}

// Lines returns the number of buffered lines
func (b *ChunkBuffer) Lines() int {
	return len(b.lines)
}

// Pop removes the last line. It reports false when nothing is buffered.
func (b *ChunkBuffer) Pop() (string, bool) {
	n := len(b.lines)
	if n == 0 {
		return "", false
	}
	line := b.lines[n-1]
	b.lines = b.lines[:n-1]
	return line, true
}

// Reset drops every buffered line
func (b *ChunkBuffer) Reset() {
	b.lines = nil
}
