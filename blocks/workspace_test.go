package blocks

import (
	"strings"
	"testing"

	"github.com/Figliar/extension-plus-API/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlock(t *testing.T, ws *MemoryWorkspace, template string) Block {
	t.Helper()
	b, err := ws.NewBlock(template)
	require.NoError(t, err)
	return b
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()

	t.Run("standard and runtime templates are present", func(t *testing.T) {
		for _, name := range []string{"controls_if", "text_join", "procedures_defreturn", "love_update", "graphics_rectangle", "filesystem_write"} {
			assert.True(t, c.Has(name), name)
		}
		assert.Greater(t, c.Len(), 250)
	})

	t.Run("compact slot syntax", func(t *testing.T) {
		tmpl, ok := c.Template("lists_getIndex")
		require.True(t, ok)
		where, ok := tmpl.Slot("WHERE")
		require.True(t, ok)
		assert.Equal(t, Slot{Name: "WHERE", Kind: SlotField, Default: "FROM_START"}, where)

		tmpl, _ = c.Template("love_keypressed")
		assert.Equal(t, ShapeHat, tmpl.Shape)
		assert.Equal(t, SlotVariable, tmpl.Slots[0].Kind)
	})

	t.Run("bad documents are rejected", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader("templates:\n  x: {slots: [wire A]}\n"))
		assert.Error(t, err)

		_, err = LoadCatalog(strings.NewReader("templates:\n  x: {shape: round}\n"))
		assert.True(t, errors.HasCode(err, errors.CodeUnknownTemplate))

		_, err = LoadCatalog(strings.NewReader("templates:\n  x: {slots: [value A, field A]}\n"))
		assert.Error(t, err)
	})
}

func TestWorkspace_Variables(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	first := ws.EnsureVariable("x")
	second := ws.EnsureVariable("x")
	ws.EnsureVariable("y")

	assert.Equal(t, first, second)
	assert.Len(t, ws.Variables(), 2)
	v, ok := ws.VariableByID(first.ID)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	_, ok = ws.Variable("z")
	assert.False(t, ok)
}

func TestWorkspace_NewBlock(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	_, err := ws.NewBlock("no_such_block")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownTemplate))

	b := newBlock(t, ws, "lists_setIndex")
	mode, _ := b.Field("MODE")
	assert.Equal(t, "SET", mode)
	assert.True(t, b.HasPrevious())
	assert.False(t, b.HasOutput())
}

func TestBlock_Mutations(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	t.Run("items mutation adds numbered inputs", func(t *testing.T) {
		join := newBlock(t, ws, "text_join")
		require.NoError(t, join.ApplyMutation(ItemsMutation{Count: 3}))
		names := slotNames(join)
		assert.Equal(t, []string{"ADD0", "ADD1", "ADD2"}, names)
	})

	t.Run("if mutation shapes branches", func(t *testing.T) {
		cond := newBlock(t, ws, "controls_if")
		assert.Equal(t, []string{"IF0", "DO0"}, slotNames(cond))
		require.NoError(t, cond.ApplyMutation(IfMutation{ElseIf: 2, Else: 1}))
		assert.Equal(t, []string{"IF0", "DO0", "IF1", "DO1", "IF2", "DO2", "ELSE"}, slotNames(cond))
	})

	t.Run("procedure mutation on calls and definitions", func(t *testing.T) {
		m := ProcedureMutation{Params: []string{"a", "b"}}
		call := newBlock(t, ws, "procedures_callreturn")
		require.NoError(t, call.ApplyMutation(m))
		assert.Equal(t, []string{"NAME", "ARG0", "ARG1"}, slotNames(call))

		def := newBlock(t, ws, "procedures_defreturn")
		require.NoError(t, def.ApplyMutation(m))
		assert.Equal(t, []string{"NAME", "STACK", "RETURN"}, slotNames(def))
		assert.True(t, def.Mutation().(ProcedureMutation).Equal(m))
	})

	t.Run("mutation after wiring fails", func(t *testing.T) {
		join := newBlock(t, ws, "text_join")
		require.NoError(t, join.ApplyMutation(ItemsMutation{Count: 1}))
		require.NoError(t, join.ConnectValue("ADD0", newBlock(t, ws, "text")))
		err := join.ApplyMutation(ItemsMutation{Count: 2})
		assert.True(t, errors.HasCode(err, errors.CodeMutationAfterWiring))
	})

	t.Run("wrong mutation family fails", func(t *testing.T) {
		err := newBlock(t, ws, "math_number").ApplyMutation(ItemsMutation{Count: 1})
		assert.True(t, errors.HasCode(err, errors.CodeUnsupportedShape))
	})
}

func TestBlock_Connections(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	t.Run("value and statement inputs", func(t *testing.T) {
		set := newBlock(t, ws, "variables_set")
		num := newBlock(t, ws, "math_number")
		require.NoError(t, set.ConnectValue("VALUE", num))
		assert.Equal(t, num, set.Value("VALUE"))
		assert.Equal(t, set, num.Parent())

		loop := newBlock(t, ws, "controls_whileUntil")
		require.NoError(t, loop.ConnectStatement("DO", set))
		assert.Equal(t, set, loop.Statement("DO"))
	})

	t.Run("unknown slots are errors", func(t *testing.T) {
		set := newBlock(t, ws, "variables_set")
		err := set.ConnectValue("NOPE", newBlock(t, ws, "math_number"))
		assert.True(t, errors.HasCode(err, errors.CodeUnboundSlot))
		assert.True(t, errors.HasCode(set.SetField("NOPE", "1"), errors.CodeUnboundSlot))
		assert.True(t, errors.HasCode(set.ConnectValue("VAR", newBlock(t, ws, "math_number")), errors.CodeUnboundSlot))
	})

	t.Run("terminals are checked", func(t *testing.T) {
		set := newBlock(t, ws, "variables_set")
		err := set.ConnectValue("VALUE", newBlock(t, ws, "text_print"))
		assert.True(t, errors.HasCode(err, errors.CodeUnboundSlot))

		def := newBlock(t, ws, "procedures_defnoreturn")
		assert.False(t, def.HasPrevious())
		assert.Error(t, set.ConnectNext(def))

		stmt := newBlock(t, ws, "text_print")
		stmt.DisableStatementLinks()
		assert.Error(t, set.ConnectNext(stmt))
	})

	t.Run("a block attaches once", func(t *testing.T) {
		a := newBlock(t, ws, "text_print")
		b := newBlock(t, ws, "text_print")
		c := newBlock(t, ws, "text_print")
		require.NoError(t, a.ConnectNext(b))
		assert.Error(t, c.ConnectNext(b))
		assert.Error(t, a.ConnectNext(c))
		assert.Equal(t, a, b.Previous())
		assert.Nil(t, c.Previous())
	})

	t.Run("nil neighbours are untyped", func(t *testing.T) {
		blk := newBlock(t, ws, "text_print")
		assert.True(t, blk.Next() == nil)
		assert.True(t, blk.Parent() == nil)
		assert.True(t, blk.Value("TEXT") == nil)
	})
}

func TestWorkspace_Rewind(t *testing.T) {
	ws := NewMemoryWorkspace(nil)
	head := newBlock(t, ws, "text_print")
	ws.EnsureVariable("x")
	mark := ws.Checkpoint()

	next := newBlock(t, ws, "text_print")
	require.NoError(t, head.ConnectNext(next))
	text := newBlock(t, ws, "text")
	require.NoError(t, head.ConnectValue("TEXT", text))
	ws.EnsureVariable("y")
	newBlock(t, ws, "controls_whileUntil")

	ws.Rewind(mark)
	assert.Equal(t, []Block{head}, ws.Blocks())
	assert.Equal(t, []Block{head}, ws.TopBlocks())
	assert.Nil(t, head.Next())
	assert.Nil(t, head.Value("TEXT"))
	_, ok := ws.Variable("y")
	assert.False(t, ok)
	assert.Len(t, ws.Variables(), 1)

	t.Run("rewound blocks accept new links", func(t *testing.T) {
		again := newBlock(t, ws, "text_print")
		assert.Equal(t, "b2", again.ID())
		require.NoError(t, head.ConnectNext(again))
		assert.Equal(t, "v2", ws.EnsureVariable("z").ID)
	})
}

func TestBlock_Layout(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	loop := newBlock(t, ws, "controls_whileUntil")
	assert.Equal(t, headerHeight+emptyBodyHeight+footerHeight, loop.Height())

	first := newBlock(t, ws, "text_print")
	second := newBlock(t, ws, "text_print")
	require.NoError(t, loop.ConnectStatement("DO", first))
	require.NoError(t, first.ConnectNext(second))

	loop.MoveTo(Point{X: 10, Y: 100})
	assert.Equal(t, Point{X: 30, Y: 132}, first.Position())
	assert.Equal(t, Point{X: 30, Y: 164}, second.Position())
	assert.Equal(t, headerHeight+2*headerHeight+footerHeight, loop.Height())

	assert.Len(t, ws.TopBlocks(), 1)
}

func TestDump(t *testing.T) {
	ws := NewMemoryWorkspace(nil)

	local := newBlock(t, ws, "local_variable")
	a := ws.EnsureVariable("a")
	require.NoError(t, local.SetField("VAR", a.ID))
	sum := newBlock(t, ws, "math_arithmetic")
	require.NoError(t, local.ConnectValue("TO", sum))
	one := newBlock(t, ws, "math_number")
	require.NoError(t, one.SetField("NUM", "1"))
	require.NoError(t, sum.ConnectValue("A", one))

	want := "@0,0\n" +
		"local_variable VAR=a\n" +
		"  TO: math_arithmetic OP=ADD\n" +
		"    A: math_number NUM=1\n"
	assert.Equal(t, want, Dump(ws))
	assert.Equal(t, strings.TrimPrefix(want, "@0,0\n"), DumpChain(ws, local))
	assert.Equal(t, "math_number NUM=1\n", DumpChain(ws, one))
}

func slotNames(b Block) []string {
	var names []string
	for _, s := range b.Slots() {
		names = append(names, s.Name)
	}
	return names
}
