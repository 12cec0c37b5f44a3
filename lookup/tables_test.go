package lookup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tables := Default()

	t.Run("sections are populated", func(t *testing.T) {
		assert.Len(t, tables.Callbacks, 35)
		assert.NotEmpty(t, tables.Statements)
		assert.NotEmpty(t, tables.Values)
		assert.NotEmpty(t, tables.Specials)
		assert.Len(t, tables.Constants, 2)
	})

	t.Run("bare and mapped entries", func(t *testing.T) {
		e, ok := tables.Statement("love.graphics.print")
		require.True(t, ok)
		assert.Equal(t, "graphics_print", e.Template)
		assert.Empty(t, e.Fields)

		e, ok = tables.Statement("table.insert")
		require.True(t, ok)
		assert.Equal(t, Entry{Template: "lists_setIndex", Fields: map[string]string{"MODE": "INSERT"}, Rule: "table_insert"}, e)

		e, ok = tables.Special("math.floor")
		require.True(t, ok)
		assert.Equal(t, "ROUNDDOWN", e.Fields["OP"])

		e, ok = tables.Value("love.filesystem.write")
		require.True(t, ok)
		assert.Equal(t, "filesystem_write", e.Template)
	})

	t.Run("statement and special may share a name", func(t *testing.T) {
		_, asStatement := tables.Statement("table.remove")
		_, asSpecial := tables.Special("table.remove")
		assert.True(t, asStatement)
		assert.True(t, asSpecial)
	})

	t.Run("ignore set", func(t *testing.T) {
		assert.True(t, tables.Ignored("list_sort"))
		assert.True(t, tables.Ignored("list_sublist_first_last"))
		assert.False(t, tables.Ignored("function list_sublist_first_last"))
		assert.False(t, tables.Ignored("love.update"))
	})

	t.Run("callbacks and constants", func(t *testing.T) {
		tmpl, ok := tables.Callback("love.update")
		require.True(t, ok)
		assert.Equal(t, "love_update", tmpl)

		c, ok := tables.Constant("math.huge")
		require.True(t, ok)
		assert.Equal(t, "INFINITY", c.Fields["CONSTANT"])
	})

	t.Run("names", func(t *testing.T) {
		names := tables.Names()
		assert.IsNonDecreasing(t, names)
		for _, name := range []string{"love.update", "math.huge", "print", "math.random"} {
			assert.Contains(t, names, name)
		}
	})

	t.Run("every template exists in the block catalog", func(t *testing.T) {
		catalog := blocks.DefaultCatalog()
		for _, tmpl := range tables.Templates() {
			assert.True(t, catalog.Has(tmpl), tmpl)
		}
	})

	t.Run("rules", func(t *testing.T) {
		assert.Equal(t, []string{
			"constrain", "degrees", "log", "prompt", "prompt_number", "random",
			"sort", "substring", "table_insert", "transparent", "trig", "trim",
		}, tables.Rules())
	})
}

func TestValidate(t *testing.T) {
	t.Run("overlapping maps are rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader(`
statements: {print: text_print}
values: {print: text}
`))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidTables))
		assert.Contains(t, err.Error(), "print appears in both statements and values")
	})

	t.Run("callbacks overlapping calls are rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader(`
callbacks: {love.load: love_load}
specials: {love.load: {template: love_load}}
`))
		assert.True(t, errors.HasCode(err, errors.CodeInvalidTables))
	})

	t.Run("entries need a template or a rule", func(t *testing.T) {
		_, err := Load(strings.NewReader(`values: {foo: {fields: {A: B}}}`))
		assert.True(t, errors.HasCode(err, errors.CodeInvalidTables))

		tables, err := Load(strings.NewReader(`specials: {math.rad: {rule: transparent}}`))
		require.NoError(t, err)
		assert.Equal(t, "transparent", tables.Specials["math.rad"].Rule)
	})

	t.Run("malformed documents", func(t *testing.T) {
		_, err := Load(strings.NewReader(`values: [1, 2]`))
		assert.True(t, errors.HasCode(err, errors.CodeInvalidTables))
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("statements:\n  beep: text_print\nignore: [helper]\n"), 0o644))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text_print", tables.Statements["beep"].Template)
	assert.True(t, tables.Ignored("helper"))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTables))
}
