package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Figliar/extension-plus-API/errors"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	r, err := NewREPLWithConfig(REPLConfig{Output: out})
	require.NoError(t, err)
	r.running = true
	return r, out
}

func TestChunkBuffer(t *testing.T) {
	b := NewChunkBuffer()
	assert.False(t, b.Pending())

	b.Add("while true do")
	assert.True(t, b.Pending())
	assert.False(t, b.Complete())

	b.Add("  x = 1")
	b.Add("end")
	assert.True(t, b.Complete())
	assert.Equal(t, 3, b.Lines())
	assert.Equal(t, "while true do\n  x = 1\nend", b.Source())

	line, ok := b.Pop()
	assert.True(t, ok)
	assert.Equal(t, "end", line)
	assert.False(t, b.Complete())

	b.Reset()
	assert.False(t, b.Pending())
	_, ok = b.Pop()
	assert.False(t, ok)
}

func TestREPL_Feed(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("x = 1")
		assert.Contains(t, out.String(), "variables_set VAR=x")
		assert.Len(t, r.Workspace().TopBlocks(), 1)
	})

	t.Run("chunks are buffered until closed", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("function f(a)")
		r.Feed("  return a")
		assert.Empty(t, out.String())
		assert.True(t, r.buffer.Pending())

		r.Feed("end")
		assert.Contains(t, out.String(), "procedures_defreturn NAME=f")
		assert.False(t, r.buffer.Pending())
	})

	t.Run("signatures carry across inputs", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("function area(w, h) return w * h end")
		out.Reset()
		r.Feed("print(area(2, 3))")
		assert.Contains(t, out.String(), "procedures_callreturn NAME=area <params=(w,h)>")

		out.Reset()
		r.Feed(":sigs")
		assert.Equal(t, "function area(w, h)\n", out.String())
	})

	t.Run("only new blocks are printed", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("x = 1")
		out.Reset()
		r.Feed("y = 2")
		assert.Contains(t, out.String(), "VAR=y")
		assert.NotContains(t, out.String(), "VAR=x")

		tops := r.Workspace().TopBlocks()
		require.Len(t, tops, 1)
		assert.NotNil(t, tops[0].Next())
	})

	t.Run("syntax error", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("x = = 1")
		assert.Contains(t, out.String(), "error:")
		assert.Contains(t, out.String(), errors.CodeParseError)
		assert.Empty(t, r.Workspace().Blocks())
	})

	t.Run("translation error", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("do x = 1 end")
		assert.Contains(t, out.String(), errors.CodeUnknownNodeKind)
	})

	t.Run("failed input leaves the workspace untouched", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("x = 1")
		out.Reset()
		r.Feed(":dump")
		before := out.String()

		out.Reset()
		r.Feed("while zz do print(x) end")
		assert.Contains(t, out.String(), errors.CodeUndeclaredVariable)
		assert.NotContains(t, out.String(), "controls_whileUntil")

		out.Reset()
		r.Feed(":dump")
		assert.Equal(t, before, out.String())
		assert.Len(t, r.Workspace().TopBlocks(), 1)

		out.Reset()
		r.Feed("y = 2")
		assert.Contains(t, out.String(), "variables_set VAR=y")
		assert.Len(t, r.Workspace().TopBlocks(), 1)
	})
}

func TestREPL_Commands(t *testing.T) {
	t.Run("vars and dump", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("score = 10")
		out.Reset()

		r.Feed(":vars")
		assert.Equal(t, "v1 score\n", out.String())

		out.Reset()
		r.Feed(":dump")
		assert.True(t, strings.HasPrefix(out.String(), "@0,0\n"))
	})

	t.Run("reset", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("function f() end")
		r.Feed("if true then")
		r.Feed(":reset")
		assert.Contains(t, out.String(), "workspace cleared")
		assert.Empty(t, r.Workspace().Blocks())
		assert.Empty(t, r.Workspace().Variables())
		assert.Equal(t, 0, r.Session().Signatures().Len())
		assert.False(t, r.buffer.Pending())
	})

	t.Run("undo", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed("while true do")
		r.Feed("  x = = 1")
		r.Feed(":undo")
		assert.Contains(t, out.String(), "dropped:   x = = 1 (1 lines buffered)")
		assert.Equal(t, 1, r.buffer.Lines())

		out.Reset()
		r.Feed(":undo")
		r.Feed(":undo")
		assert.Contains(t, out.String(), "nothing buffered")
	})

	t.Run("kinds and warnings", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed(":kinds")
		assert.Contains(t, out.String(), "if_statement")

		r.Feed("while true do")
		r.Feed("  math.random()")
		r.Feed("end")
		out.Reset()
		r.Feed(":warnings")
		assert.Contains(t, out.String(), errors.CodeDetachedBlock)
	})

	t.Run("help and unknown commands", func(t *testing.T) {
		r, out := newTestREPL(t)
		r.Feed(":help")
		assert.Contains(t, out.String(), ":reset")

		out.Reset()
		r.Feed(":frobnicate")
		assert.Contains(t, out.String(), "UNKNOWN_COMMAND")
	})

	t.Run("quit", func(t *testing.T) {
		r, _ := newTestREPL(t)
		r.Feed(":quit")
		assert.False(t, r.Running())
	})
}

func TestREPL_RunReader(t *testing.T) {
	t.Run("stops at quit", func(t *testing.T) {
		r, out := newTestREPL(t)
		in := strings.NewReader("function f()\n  print(1)\nend\nf()\n:quit\nx = 1\n")
		require.NoError(t, r.RunReader(in))
		assert.False(t, r.Running())
		_, declared := r.Workspace().Variable("x")
		assert.False(t, declared)
		assert.Contains(t, out.String(), "procedures_callnoreturn NAME=f")
	})

	t.Run("flushes an unterminated chunk", func(t *testing.T) {
		r, out := newTestREPL(t)
		require.NoError(t, r.RunReader(strings.NewReader("if true then\n  x = 1\n")))
		assert.Contains(t, out.String(), "error:")
	})
}
