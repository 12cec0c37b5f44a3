package lowering

import (
	"strings"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/syntax"
)

// ruleFunc lowers a call whose block cannot be filled positionally
type ruleFunc func(t *callTranslator, entry lookup.Entry) (blocks.Block, error)

// specialRule returns the rule registered under name
func specialRule(name string) (ruleFunc, bool) {
	switch name {
	case "random":
		return ruleRandom, true
	case "log":
		return ruleLog, true
	case "constrain":
		return ruleConstrain, true
	case "degrees":
		return ruleDegrees, true
	case "trig":
		return ruleTrig, true
	case "transparent":
		return ruleTransparent, true
	case "trim":
		return ruleTrim, true
	case "sort":
		return ruleSort, true
	case "substring":
		return ruleSubstring, true
	case "prompt":
		return rulePrompt, true
	case "prompt_number":
		return rulePromptNumber, true
	case "table_insert":
		return ruleTableInsert, true
	default:
		return nil, false
	}
}

// KnownRule reports whether name is a special rule lookup tables may use
func KnownRule(name string) bool {
	_, ok := specialRule(name)
	return ok
}

func (t *callTranslator) malformed(format string, args ...interface{}) error {
	return t.s.errorf(errors.CodeMalformedCallShape, t.node, "%s: "+format, append([]interface{}{t.name}, args...)...)
}

// inputs connects nodes[i] to slots[i]
func (t *callTranslator) inputs(blk blocks.Block, slots []string, nodes ...syntax.Node) error {
	for i, slot := range slots {
		if err := t.connectValue(blk, slot, nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// math.random() is a fraction, math.random(n) and math.random(m, n) integers
func ruleRandom(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) == 0 {
		return t.block("math_random_float")
	}
	if len(t.args) > 2 {
		return nil, t.malformed("takes at most 2 arguments, got %d", len(t.args))
	}
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	if len(t.args) == 1 {
		one, err := t.block("math_number")
		if err != nil {
			return nil, err
		}
		if err := t.setField(one, "NUM", "1"); err != nil {
			return nil, err
		}
		if err := t.s.at(blk.ConnectValue("FROM", one), t.node); err != nil {
			return nil, err
		}
		return blk, t.connectValue(blk, "TO", t.args[0])
	}
	return blk, t.inputs(blk, []string{"FROM", "TO"}, t.args[0], t.args[1])
}

// math.log(x) is LN, math.log(x, 10) LOG10
func ruleLog(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	op := "LN"
	switch len(t.args) {
	case 1:
	case 2:
		if base := t.args[1]; base.Kind() != "number" || base.Text() != "10" {
			return nil, t.malformed("only base 10 is supported, got %s", base.Text())
		}
		op = "LOG10"
	default:
		return nil, t.malformed("takes 1 or 2 arguments, got %d", len(t.args))
	}
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	if err := t.setField(blk, "OP", op); err != nil {
		return nil, err
	}
	return blk, t.connectValue(blk, "NUM", t.args[0])
}

// math.min(math.max(v, lo), hi) clamps; any other math.min is the minimum
// of a list of its arguments
func ruleConstrain(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) == 2 && isCall(t.args[0], "math.max") {
		if inner := callArguments(t.args[0]); len(inner) == 2 {
			blk, err := t.fixed(entry.Template, entry)
			if err != nil {
				return nil, err
			}
			return blk, t.inputs(blk, []string{"VALUE", "LOW", "HIGH"}, inner[0], inner[1], t.args[1])
		}
	}
	if len(t.args) < 2 {
		return nil, t.malformed("takes at least 2 arguments, got %d", len(t.args))
	}

	blk, err := t.block("math_on_list")
	if err != nil {
		return nil, err
	}
	if err := t.setField(blk, "OP", "MIN"); err != nil {
		return nil, err
	}
	list, err := t.block("lists_create_with")
	if err != nil {
		return nil, err
	}
	if err := t.s.at(list.ApplyMutation(blocks.ItemsMutation{Count: len(t.args)}), t.node); err != nil {
		return nil, err
	}
	for i, arg := range t.args {
		if err := t.connectValue(list, itemSlot(i), arg); err != nil {
			return nil, err
		}
	}
	return blk, t.s.at(blk.ConnectValue("LIST", list), t.node)
}

// math.deg wraps an inverse trigonometric call: atan2 has its own block,
// asin, acos and atan share math_trig
func ruleDegrees(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 1 || t.args[0].Kind() != "call" {
		return nil, t.malformed("expects an inverse trigonometric call")
	}
	call := t.args[0]
	inner := callArguments(call)
	switch name := callName(call); name {
	case "math.atan2":
		if len(inner) != 2 {
			return nil, t.malformed("math.atan2 takes 2 arguments, got %d", len(inner))
		}
		blk, err := t.fixed(entry.Template, entry)
		if err != nil {
			return nil, err
		}
		return blk, t.inputs(blk, []string{"y", "x"}, inner[0], inner[1])
	case "math.asin", "math.acos", "math.atan":
		if len(inner) != 1 {
			return nil, t.malformed("%s takes 1 argument, got %d", name, len(inner))
		}
		blk, err := t.block("math_trig")
		if err != nil {
			return nil, err
		}
		if err := t.setField(blk, "OP", strings.ToUpper(strings.TrimPrefix(name, "math."))); err != nil {
			return nil, err
		}
		return blk, t.connectValue(blk, "NUM", inner[0])
	default:
		return nil, t.malformed("cannot convert %s to degrees", name)
	}
}

// math.sin(math.rad(x)) takes x in degrees; a bare argument is passed as is
func ruleTrig(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 1 {
		return nil, t.malformed("takes 1 argument, got %d", len(t.args))
	}
	arg := t.args[0]
	if isCall(arg, "math.rad") {
		if inner := callArguments(arg); len(inner) == 1 {
			arg = inner[0]
		}
	}
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	return blk, t.connectValue(blk, "NUM", arg)
}

// math.rad(x) on its own is the block of x
func ruleTransparent(t *callTranslator, _ lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 1 {
		return nil, t.malformed("takes 1 argument, got %d", len(t.args))
	}
	return t.s.Lower(t.args[0])
}

var trimModes = map[string]string{
	"^%s*(.-)%s*$": "BOTH",
	"^%s*(.-)":     "LEFT",
	"^%s*(,-)":     "LEFT",
	"(.-)%s*$":     "RIGHT",
}

// string.gsub(s, pattern, "%1") with a whitespace pattern trims s
func ruleTrim(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) < 2 || t.args[1].Kind() != "string" {
		return nil, t.malformed("expects a string and a trim pattern")
	}
	mode, ok := trimModes[unquote(t.args[1].Text())]
	if !ok {
		return nil, t.malformed("pattern %s is not a trim pattern", t.args[1].Text())
	}
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	if err := t.setField(blk, "MODE", mode); err != nil {
		return nil, err
	}
	return blk, t.connectValue(blk, "TEXT", t.args[0])
}

// list_sort(list, "NUMERIC", 1)
func ruleSort(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 3 || t.args[1].Kind() != "string" {
		return nil, t.malformed("expects a list, a sort type and a direction")
	}
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	if err := t.setField(blk, "TYPE", unquote(t.args[1].Text())); err != nil {
		return nil, err
	}
	if err := t.setField(blk, "DIRECTION", strings.TrimSpace(t.args[2].Text())); err != nil {
		return nil, err
	}
	return blk, t.connectValue(blk, "LIST", t.args[0])
}

// string.sub(s, i, j) counts both positions from the start
func ruleSubstring(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	for _, field := range []string{"WHERE1", "WHERE2"} {
		if err := t.setField(blk, field, "FROM_START"); err != nil {
			return nil, err
		}
	}
	return blk, t.fill(blk, nil, true)
}

// text_prompt("message")
func rulePrompt(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 1 || t.args[0].Kind() != "string" {
		return nil, t.malformed("expects one string message")
	}
	return t.prompt(entry, t.args[0])
}

// tonumber(text_prompt("message")) asks for a number
func rulePromptNumber(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	if len(t.args) != 1 || !isCall(t.args[0], "text_prompt") {
		return nil, t.malformed("only tonumber(text_prompt(...)) is supported")
	}
	inner := callArguments(t.args[0])
	if len(inner) != 1 || inner[0].Kind() != "string" {
		return nil, t.malformed("text_prompt expects one string message")
	}
	return t.prompt(entry, inner[0])
}

func (t *callTranslator) prompt(entry lookup.Entry, message syntax.Node) (blocks.Block, error) {
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	return blk, t.setField(blk, "TEXT", unquote(message.Text()))
}

// table.insert(t, v) appends, table.insert(t, i, v) inserts at i
func ruleTableInsert(t *callTranslator, entry lookup.Entry) (blocks.Block, error) {
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	switch len(t.args) {
	case 2:
		if err := t.setField(blk, "WHERE", "LAST"); err != nil {
			return nil, err
		}
		return blk, t.inputs(blk, []string{"LIST", "TO"}, t.args[0], t.args[1])
	case 3:
		if err := t.setField(blk, "WHERE", "FROM_START"); err != nil {
			return nil, err
		}
		return blk, t.inputs(blk, []string{"LIST", "AT", "TO"}, t.args[0], t.args[1], t.args[2])
	default:
		return nil, t.malformed("takes 2 or 3 arguments, got %d", len(t.args))
	}
}
