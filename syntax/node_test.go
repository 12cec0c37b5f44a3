package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCall() *Element {
	return New("call", "",
		New("identifier", "print").At(1, 1),
		New("arguments", "",
			Token("("),
			New("expression_list", "", New("number", "1").At(1, 7)),
			Token(")"),
		),
	)
}

func TestElement_Navigation(t *testing.T) {
	call := sampleCall()

	t.Run("parent and siblings", func(t *testing.T) {
		callee := call.Child(0)
		args := call.Child(1)
		require.NotNil(t, callee)
		require.NotNil(t, args)

		assert.Equal(t, "call", callee.Parent().Kind())
		assert.Equal(t, "arguments", callee.NextSibling().Kind())
		assert.Equal(t, "identifier", args.PrevSibling().Kind())
		assert.Nil(t, callee.PrevSibling())
		assert.Nil(t, args.NextSibling())
		assert.Nil(t, call.Parent())
	})

	t.Run("out of range children are untyped nil", func(t *testing.T) {
		assert.Nil(t, call.Child(5))
		assert.Nil(t, call.Child(-1))
		assert.True(t, call.Child(9) == nil)
	})

	t.Run("derived text joins children", func(t *testing.T) {
		assert.Equal(t, "print ( 1 )", call.Text())
		assert.Equal(t, "(", call.Child(1).Child(0).Kind())
	})

	t.Run("position falls back to first child", func(t *testing.T) {
		assert.Equal(t, Position{Line: 1, Column: 1}, call.Pos())
		assert.Equal(t, "1:1", call.Pos().String())
	})
}

func TestHelpers(t *testing.T) {
	call := sampleCall()

	assert.Equal(t, "identifier", FirstChild(call).Kind())
	assert.Equal(t, "arguments", LastChild(call).Kind())
	assert.Nil(t, FirstChild(Token("end")))
	assert.Equal(t, "arguments", ChildOfKind(call, "arguments").Kind())
	assert.Nil(t, ChildOfKind(call, "block"))
	assert.Len(t, ChildrenOfKind(call.Child(1), "("), 1)
	assert.True(t, KindIs(call, "block", "call"))
	assert.False(t, KindIs(nil, "call"))

	var kinds []string
	Walk(call, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != "arguments"
	})
	assert.Equal(t, []string{"call", "identifier", "arguments"}, kinds)
}

func TestFindErrors(t *testing.T) {
	root := New("chunk", "",
		sampleCall(),
		NewError("= =", Token("=")).At(2, 3),
		New("block", "", NewMissing("end").At(4, 1)),
	)

	found := FindErrors(root)
	require.Len(t, found, 2)
	assert.True(t, found[0].IsError())
	assert.True(t, found[1].IsMissing())
	assert.Equal(t, 4, found[1].Pos().Line)
}

func TestDump(t *testing.T) {
	out := Dump(New("chunk", "", New("number", "42").At(1, 1)))
	assert.Equal(t, "chunk @1:1\n  number \"42\" @1:1\n", out)
}
