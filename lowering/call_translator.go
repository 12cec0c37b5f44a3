package lowering

import (
	"strings"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/syntax"
)

// callName is the callee text of a call, e.g. "love.graphics.print"
func callName(call syntax.Node) string {
	return strings.TrimSpace(call.Child(0).Text())
}

// callArguments returns the argument expressions of a call
func callArguments(call syntax.Node) []syntax.Node {
	return listItems(syntax.ChildOfKind(syntax.ChildOfKind(call, "arguments"), "expression_list"))
}

func isCall(n syntax.Node, name string) bool {
	return syntax.KindIs(n, "call") && callName(n) == name
}

// callTranslator classifies a call by where it stands and what the lookup
// tables and the signature table know about its name
type callTranslator struct {
	base
	name string
	args []syntax.Node
}

func newCallTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &callTranslator{base: newBase(s, node, prev), name: callName(node), args: callArguments(node)}
}

func (t *callTranslator) Variant() Variant { return VariantCall }

// statement reports whether the call stands on its own as a statement
func (t *callTranslator) statement() bool {
	return syntax.KindIs(t.node.Parent(), "block", "chunk")
}

func (t *callTranslator) Lower() (Result, error) {
	var blk blocks.Block
	var err error
	if t.statement() {
		blk, err = t.lowerStatement()
	} else {
		blk, err = t.lowerValue()
	}
	if err != nil {
		return Result{}, err
	}
	return Produced(blk), nil
}

func (t *callTranslator) lowerStatement() (blocks.Block, error) {
	if entry, ok := t.s.tables.Statement(t.name); ok {
		if entry.Rule != "" {
			return t.special(entry)
		}
		return t.generic(entry, false)
	}
	if t.known() {
		return t.lowerValue()
	}
	sig, err := t.signature()
	if err != nil {
		return nil, err
	}
	return t.procedure("procedures_callnoreturn", sig)
}

func (t *callTranslator) lowerValue() (blocks.Block, error) {
	if entry, ok := t.s.tables.Value(t.name); ok {
		return t.generic(entry, false)
	}
	if entry, ok := t.s.tables.Special(t.name); ok {
		return t.special(entry)
	}
	if _, ok := t.s.tables.Statement(t.name); ok {
		return nil, t.s.errorf(errors.CodeNoReturnValue, t.node, "%s does not return a value", t.name)
	}
	sig, err := t.signature()
	if err != nil {
		return nil, err
	}
	if !sig.HasReturn {
		return nil, t.s.errorf(errors.CodeNoReturnValue, t.node, "function %s does not return a value", t.name)
	}
	return t.procedure("procedures_callreturn", sig)
}

// known reports whether the name produces a value block from the tables
func (t *callTranslator) known() bool {
	_, isValue := t.s.tables.Value(t.name)
	_, isSpecial := t.s.tables.Special(t.name)
	return isValue || isSpecial
}

func (t *callTranslator) signature() (Signature, error) {
	sig, ok := t.s.signatures.Lookup(t.name)
	if !ok {
		return Signature{}, t.s.errorf(errors.CodeMissingSignature, t.node, "call to unknown function %s", t.name)
	}
	return sig, nil
}

// procedure builds a call to a user function with the definition's shape
func (t *callTranslator) procedure(template string, sig Signature) (blocks.Block, error) {
	blk, err := t.block(template)
	if err != nil {
		return nil, err
	}
	if sig.Mutation != nil {
		if err := t.s.at(blk.ApplyMutation(*sig.Mutation), t.node); err != nil {
			return nil, err
		}
	}
	if err := t.setField(blk, "NAME", sig.Name); err != nil {
		return nil, err
	}
	return blk, t.fill(blk, nil, true)
}

// special applies the entry's rule, or builds the entry's template with its
// fixed fields and fills value inputs from the arguments
func (t *callTranslator) special(entry lookup.Entry) (blocks.Block, error) {
	if entry.Rule == "" {
		return t.generic(entry, true)
	}
	rule, ok := specialRule(entry.Rule)
	if !ok {
		return nil, t.s.errorf(errors.CodeUnknownRule, t.node, "no rule named %q for %s", entry.Rule, t.name)
	}
	t.s.logger.Debug("special rule", logging.StringField("rule", entry.Rule), logging.StringField("call", t.name))
	return rule(t, entry)
}

// generic builds the entry's template and fills it positionally
func (t *callTranslator) generic(entry lookup.Entry, inputsOnly bool) (blocks.Block, error) {
	blk, err := t.fixed(entry.Template, entry)
	if err != nil {
		return nil, err
	}
	return blk, t.fill(blk, entry.Fields, inputsOnly)
}

// fixed builds template and writes the entry's fixed fields
func (t *callTranslator) fixed(template string, entry lookup.Entry) (blocks.Block, error) {
	blk, err := t.block(template)
	if err != nil {
		return nil, err
	}
	for _, name := range entry.FieldNames() {
		if err := t.setField(blk, name, entry.Fields[name]); err != nil {
			return nil, err
		}
	}
	return blk, nil
}

// fill walks the slots of blk in order and consumes one argument per value
// input and, unless inputsOnly, per editable field. Fields fixed by the
// lookup entry are left alone.
func (t *callTranslator) fill(blk blocks.Block, fixed map[string]string, inputsOnly bool) error {
	next := 0
	for _, slot := range blk.Slots() {
		if next >= len(t.args) {
			break
		}
		arg := t.args[next]
		switch {
		case slot.Kind == blocks.SlotValue:
			if err := t.connectValue(blk, slot.Name, arg); err != nil {
				return err
			}
		case slot.Kind.Editable() && !inputsOnly:
			if _, ok := fixed[slot.Name]; ok {
				continue
			}
			value := fieldLiteral(arg.Text())
			if slot.Kind == blocks.SlotVariable {
				value = t.s.ws.EnsureVariable(value).ID
			}
			if err := t.setField(blk, slot.Name, value); err != nil {
				return err
			}
		default:
			continue
		}
		next++
	}
	for _, extra := range t.args[next:] {
		t.s.warn(errors.CodeSurplusArgument, extra, "%s has no slot left for argument %q", blk.Type(), extra.Text())
	}
	return nil
}

// fieldLiteral strips quotes from an argument written into a field
func fieldLiteral(text string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(strings.TrimSpace(text))
}
