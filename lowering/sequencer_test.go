package lowering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

func TestSequencer_TopLevel(t *testing.T) {
	t.Run("adjacent statements chain", func(t *testing.T) {
		_, report := mustTranslate(t, "x = 1\ny = 2\nz = 3\n")
		require.Len(t, report.TopBlocks, 1)
		head := report.TopBlocks[0]
		require.NotNil(t, head.Next())
		require.NotNil(t, head.Next().Next())
		assert.Nil(t, head.Next().Next().Next())
	})

	t.Run("blank line starts a new stack", func(t *testing.T) {
		_, report := mustTranslate(t, "x = 1\n\ny = 2\n")
		require.Len(t, report.TopBlocks, 2)
		first, second := report.TopBlocks[0], report.TopBlocks[1]
		assert.Nil(t, first.Next())
		assert.Equal(t, first.Position().Y+first.Height()+DefaultMargin, second.Position().Y)
	})

	t.Run("comment is dropped and starts a new stack", func(t *testing.T) {
		ws, report := mustTranslate(t, "x = 1\n-- next part\ny = 2\n")
		require.Len(t, report.TopBlocks, 2)
		for _, blk := range ws.Blocks() {
			assert.NotEqual(t, "comment", blk.Type())
		}
	})

	t.Run("margin option", func(t *testing.T) {
		_, report := mustTranslate(t, "x = 1\n\ny = 2\n", WithMargin(5))
		first, second := report.TopBlocks[0], report.TopBlocks[1]
		assert.Equal(t, first.Height()+5, second.Position().Y-first.Position().Y)
	})

	t.Run("shebang is its own stack", func(t *testing.T) {
		ws, report := mustTranslate(t, "#!/usr/bin/lua\nx = 1\n")
		require.NotEmpty(t, report.TopBlocks)
		assert.Equal(t, "shebang shebang_context=#!/usr/bin/lua", blocks.Describe(ws, report.TopBlocks[0]))
	})

	t.Run("cursor persists across translations", func(t *testing.T) {
		ws := blocks.NewMemoryWorkspace(nil)
		s, err := NewSession(ws, nil)
		require.NoError(t, err)

		for _, src := range []string{"x = 1", "y = 2"} {
			root := syntax.New("chunk", "",
				syntax.New("variable_assignment", "",
					syntax.New("variable_list", "", syntax.Leaf("identifier", src[:1])),
					syntax.Token("="),
					syntax.New("expression_list", "", syntax.Leaf("number", src[4:]))))
			_, err := s.Translate(root)
			require.NoError(t, err)
		}
		tops := ws.TopBlocks()
		require.Len(t, tops, 1)
		assert.NotNil(t, tops[0].Next())
	})
}

func TestSequencer_Bodies(t *testing.T) {
	t.Run("comments inside bodies become blocks", func(t *testing.T) {
		ws, report := mustTranslate(t, "while true do\n  -- spin\n  x = 1\nend\n")
		head := report.TopBlocks[0].Statement("DO")
		require.NotNil(t, head)
		assert.Equal(t, "comment COMMENT_CONTEXT= spin", blocks.Describe(ws, head))
		assert.Equal(t, "variables_set", head.Next().Type())
	})

	t.Run("blank lines inside bodies are ignored", func(t *testing.T) {
		_, report := mustTranslate(t, "while true do\n  x = 1\n\n  x = 2\nend\n")
		head := report.TopBlocks[0].Statement("DO")
		require.NotNil(t, head)
		assert.NotNil(t, head.Next())
	})

	t.Run("value in a body is detached below the root", func(t *testing.T) {
		_, report := mustTranslate(t, "while true do\n  math.random()\nend\n")
		assert.Equal(t, []string{errors.CodeDetachedBlock}, warningCodes(report))

		require.Len(t, report.TopBlocks, 2)
		loop, detached := report.TopBlocks[0], report.TopBlocks[1]
		assert.Nil(t, loop.Statement("DO"))
		assert.Equal(t, "math_random_float", detached.Type())
		assert.Equal(t, loop.Position().Y+loop.Height()+DefaultMargin, detached.Position().Y)
	})

	t.Run("nested bodies", func(t *testing.T) {
		ws, report := mustTranslate(t, `function love.update(dt)
  for i = 1, 3 do
    if i == 2 then
      print(dt)
    end
  end
end
`)
		hook := report.TopBlocks[0]
		assert.Equal(t, "love_update dt=dt", blocks.Describe(ws, hook))
		loop := hook.Statement("input")
		require.NotNil(t, loop)
		cond := loop.Statement("DO")
		require.NotNil(t, cond)
		assert.Equal(t, "controls_if", cond.Type())
		assert.Equal(t, "text_print", cond.Statement("DO0").Type())
	})

	t.Run("return below the first level", func(t *testing.T) {
		ws, report := mustTranslate(t, `function sign(n)
  if n < 0 then
    return -1
  end
  return 1
end
`)
		def := report.TopBlocks[0]
		assert.Equal(t, "procedures_defreturn", def.Type())
		early := def.Statement("STACK").Statement("DO0")
		require.NotNil(t, early)
		assert.Equal(t, "procedures_ifreturn", blocks.Describe(ws, early))
		assert.NotNil(t, def.Value("RETURN"))
	})
}
