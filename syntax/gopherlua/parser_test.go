package gopherlua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

func kinds(n syntax.Node) []string {
	var out []string
	for _, c := range syntax.Children(n) {
		out = append(out, c.Kind())
	}
	return out
}

func mustParse(t *testing.T, src string) *syntax.Element {
	t.Helper()
	root, err := Parse([]byte(src), "test.lua")
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func TestScan(t *testing.T) {
	t.Run("comments and blank lines", func(t *testing.T) {
		src := "x = 1 -- one\n\n--[[ long\n\ncomment ]]\ny = 2\n"
		idx := scan(src)
		require.Len(t, idx.decorations, 3)

		assert.Equal(t, decoration{line: 1, col: 7, text: "-- one"}, idx.decorations[0])
		assert.True(t, idx.decorations[1].blank)
		assert.Equal(t, 2, idx.decorations[1].line)
		assert.Equal(t, 3, idx.decorations[2].line)
		assert.Equal(t, "--[[ long\n\ncomment ]]", idx.decorations[2].text)
	})

	t.Run("dashes inside strings are not comments", func(t *testing.T) {
		idx := scan(`print("a -- b", 'c -- d', [[e -- f]])`)
		assert.Empty(t, idx.decorations)
	})

	t.Run("words skip strings and comments", func(t *testing.T) {
		idx := scan("if a then -- else\n  s = \"else\"\nelse\nend")
		assert.True(t, idx.hasWord(1, "then"))
		assert.False(t, idx.hasWord(1, "else"))
		assert.False(t, idx.hasWord(2, "else"))
		assert.True(t, idx.hasWord(3, "else"))
		assert.Equal(t, 3, idx.lastWordLine("else", 1, 4))
		assert.Equal(t, 0, idx.lastWordLine("else", 1, 2))
	})

	t.Run("column", func(t *testing.T) {
		idx := scan("  local x = 1")
		assert.Equal(t, 3, idx.column(1, "local"))
		assert.Equal(t, 9, idx.column(1, "x"))
		assert.Equal(t, 3, idx.column(1, "missing"))
		assert.Equal(t, 1, idx.column(9, "x"))
	})
}

func TestParse_Statements(t *testing.T) {
	root := mustParse(t, `local a = 1 + 2
b = a
print(b)
while b < 10 do b = b + 1 end
repeat b = b - 1 until b == 0
for i = 1, 10, 2 do print(i) end
for _, v in ipairs(t) do print(v) end
function f(x, y) return x + y end
local function g() end
`)
	assert.Equal(t, []string{
		"local_variable_declaration",
		"variable_assignment",
		"call",
		"while_statement",
		"repeat_statement",
		"for_numeric_statement",
		"for_generic_statement",
		"function_definition_statement",
		"local_function_definition_statement",
	}, kinds(root))

	t.Run("local declaration", func(t *testing.T) {
		local := root.Child(0)
		assert.Equal(t, []string{"local", "variable_list", "=", "expression_list"}, kinds(local))
		sum := local.Child(3).Child(0)
		assert.Equal(t, []string{"number", "+", "number"}, kinds(sum))
		assert.Equal(t, syntax.Position{Line: 1, Column: 1}, local.Pos())
	})

	t.Run("call", func(t *testing.T) {
		call := root.Child(2)
		assert.Equal(t, "print(b)", call.Text())
		assert.Equal(t, "identifier", call.Child(0).Kind())
		assert.Equal(t, []string{"(", "expression_list", ")"}, kinds(call.Child(1)))
	})

	t.Run("numeric for keeps the step", func(t *testing.T) {
		loop := root.Child(5)
		assert.Equal(t, []string{"for", "identifier", "=", "number", ",", "number", ",", "number", "do", "block", "end"}, kinds(loop))
	})

	t.Run("definitions", func(t *testing.T) {
		def := root.Child(7)
		assert.Equal(t, "f", syntax.ChildOfKind(def, "function_name").Text())
		params := syntax.ChildOfKind(def, "parameter_list")
		assert.Equal(t, []string{"identifier", ",", "identifier"}, kinds(params))
		assert.Equal(t, []string{"return_statement"}, kinds(syntax.ChildOfKind(def, "block")))

		local := root.Child(8)
		assert.Equal(t, "g", syntax.ChildOfKind(local, "identifier").Text())
		assert.Nil(t, syntax.ChildOfKind(local, "parameter_list"))
	})
}

func TestParse_Expressions(t *testing.T) {
	root := mustParse(t, `x = love.graphics.getWidth()
y = t[1]
z = {1, 2, key = 3}
w = "a" .. "b"
v = not true
obj:move(1)
`)

	value := func(i int) syntax.Node {
		return syntax.ChildOfKind(root.Child(i), "expression_list").Child(0)
	}

	t.Run("dotted callee", func(t *testing.T) {
		callee := value(0).Child(0)
		assert.Equal(t, "variable", callee.Kind())
		assert.Equal(t, "love.graphics.getWidth", callee.Text())
	})

	t.Run("bracket index", func(t *testing.T) {
		index := value(1)
		assert.Equal(t, []string{"identifier", "[", "number", "]"}, kinds(index))
		assert.Equal(t, "t[1]", index.Text())
	})

	t.Run("table fields", func(t *testing.T) {
		fields := syntax.ChildOfKind(value(2), "field_list")
		require.NotNil(t, fields)
		assert.Len(t, syntax.ChildrenOfKind(fields, "field"), 3)
		keyed := syntax.ChildrenOfKind(fields, "field")[2]
		assert.Equal(t, []string{"identifier", "=", "number"}, kinds(keyed))
	})

	t.Run("concatenation and strings", func(t *testing.T) {
		concat := value(3)
		assert.Equal(t, []string{"string", "..", "string"}, kinds(concat))
		assert.Equal(t, `"a"`, concat.Child(0).Text())
	})

	t.Run("unary", func(t *testing.T) {
		assert.Equal(t, []string{"not", "true"}, kinds(value(4)))
	})

	t.Run("method call", func(t *testing.T) {
		call := root.Child(5)
		assert.Equal(t, "method_index_expression", call.Child(0).Kind())
		assert.Equal(t, "obj:move", call.Child(0).Text())
	})
}

func TestParse_If(t *testing.T) {
	t.Run("elseif and else clauses", func(t *testing.T) {
		root := mustParse(t, `if a then
  x = 1
elseif b then
  x = 2
elseif c then
  x = 3
else
  x = 4
end
`)
		stmt := root.Child(0)
		assert.Equal(t, []string{"if", "identifier", "then", "block", "elseif_clause", "elseif_clause", "else_clause", "end"}, kinds(stmt))
		assert.Equal(t, []string{"elseif", "identifier", "then", "block"}, kinds(stmt.Child(4)))
		assert.Equal(t, "c", stmt.Child(5).Child(1).Text())
		assert.Equal(t, []string{"variable_assignment"}, kinds(stmt.Child(6).Child(1)))
	})

	t.Run("empty else is kept", func(t *testing.T) {
		root := mustParse(t, "if a then x = 1 else end")
		stmt := root.Child(0)
		assert.Equal(t, []string{"if", "identifier", "then", "block", "else_clause", "end"}, kinds(stmt))
	})

	t.Run("nested if in else is not an elseif", func(t *testing.T) {
		root := mustParse(t, `if a then
  x = 1
else
  if b then x = 2 end
end
`)
		stmt := root.Child(0)
		assert.Equal(t, []string{"if", "identifier", "then", "block", "else_clause", "end"}, kinds(stmt))
		assert.Equal(t, []string{"if_statement"}, kinds(stmt.Child(4).Child(1)))
	})
}

func TestParse_Decorations(t *testing.T) {
	t.Run("comments and blank lines at top level", func(t *testing.T) {
		root := mustParse(t, "-- header\nx = 1\n\ny = 2 -- trailing\n")
		assert.Equal(t, []string{"comment", "variable_assignment", "empty_line", "variable_assignment", "comment"}, kinds(root))
		assert.Equal(t, "-- header", root.Child(0).Text())
	})

	t.Run("comments inside bodies", func(t *testing.T) {
		root := mustParse(t, `function love.draw()
  -- draw things
  print("hi")
end
`)
		body := syntax.ChildOfKind(root.Child(0), "block")
		assert.Equal(t, []string{"comment", "call"}, kinds(body))
		assert.Equal(t, "love.draw", syntax.ChildOfKind(root.Child(0), "function_name").Text())
	})

	t.Run("comments follow the clause they are written in", func(t *testing.T) {
		root := mustParse(t, `if a then
  x = 1
else
  -- otherwise
  x = 2
end
`)
		stmt := root.Child(0)
		assert.Equal(t, []string{"variable_assignment"}, kinds(stmt.Child(3)))
		assert.Equal(t, []string{"comment", "variable_assignment"}, kinds(stmt.Child(4).Child(1)))
	})

	t.Run("blank lines inside a multi-line statement are dropped", func(t *testing.T) {
		root := mustParse(t, "t = {\n  1,\n\n  2,\n}\nprint(t)\n")
		assert.Equal(t, []string{"variable_assignment", "call"}, kinds(root))
	})

	t.Run("shebang", func(t *testing.T) {
		root := mustParse(t, "#!/usr/bin/env lua\nprint(1)\n")
		assert.Equal(t, []string{"shebang", "call"}, kinds(root))
		assert.Equal(t, "#!/usr/bin/env lua", root.Child(0).Text())
	})
}

func TestParse_SyntaxError(t *testing.T) {
	root, err := Parse([]byte("x = = 1\n"), "broken.lua")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	require.NotNil(t, root)
	found := syntax.FindErrors(root)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Pos().Line)
}

func TestIncomplete(t *testing.T) {
	open := []string{
		"function f(a)",
		"if x then\n  y = 1\nelse",
		"while true do",
		"repeat\n  x = x + 1",
		"t = {\n  1,",
		"print(",
		"s = [[long\ntext",
		"--[[ comment",
	}
	for _, src := range open {
		assert.True(t, Incomplete([]byte(src)), src)
	}

	closed := []string{
		"",
		"x = 1",
		"function f(a) return a end",
		"if x then y = 1 elseif z then y = 2 else y = 3 end",
		"for i = 1, 3 do print(i) end",
		"repeat x = x + 1 until x > 3",
		"s = \"function do if\"",
		"-- function",
		"t[1] = {2}",
		"x = = 1",
	}
	for _, src := range closed {
		assert.False(t, Incomplete([]byte(src)), src)
	}
}
