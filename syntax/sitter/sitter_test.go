package sitter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Figliar/extension-plus-API/syntax"
)

func TestParser(t *testing.T) {
	p := NewParser()
	defer p.Close()

	src := []byte("local x = 1\nprint(x)\n")
	root, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, root)

	t.Run("root spans the source", func(t *testing.T) {
		assert.Nil(t, root.Parent())
		assert.Equal(t, syntax.Position{Line: 1, Column: 1}, root.Pos())
		assert.Contains(t, root.Text(), "print(x)")
		assert.Greater(t, root.ChildCount(), 1)
	})

	t.Run("navigation", func(t *testing.T) {
		first := root.Child(0)
		require.NotNil(t, first)
		assert.Equal(t, root.Kind(), first.Parent().Kind())
		assert.Nil(t, first.PrevSibling())
		second := first.NextSibling()
		require.NotNil(t, second)
		assert.Equal(t, "function_call", second.Kind())
		assert.Equal(t, "print(x)", strings.TrimSpace(second.Text()))
		assert.Equal(t, syntax.Position{Line: 2, Column: 1}, second.Pos())
		assert.Nil(t, root.Child(root.ChildCount()))
	})

	t.Run("clean tree has no errors", func(t *testing.T) {
		assert.Empty(t, syntax.FindErrors(root))
	})
}

func TestDiagnose(t *testing.T) {
	t.Run("valid source", func(t *testing.T) {
		diags, err := Diagnose(context.Background(), []byte("x = 1\n"))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("broken source", func(t *testing.T) {
		diags, err := Diagnose(context.Background(), []byte("x = 1\nif x then\n  y = = 2\n"))
		require.NoError(t, err)
		require.NotEmpty(t, diags)
		assert.GreaterOrEqual(t, diags[0].Pos.Line, 2)
		assert.NotEmpty(t, diags[0].String())
		assert.Len(t, Positions(diags), len(diags))
	})
}
