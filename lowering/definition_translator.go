package lowering

import (
	"strings"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/syntax"
)

// definitionName returns the declared name of a function definition
func definitionName(n syntax.Node) string {
	if name := syntax.ChildOfKind(n, "function_name"); name != nil {
		return strings.TrimSpace(name.Text())
	}
	if name := syntax.ChildOfKind(n, "identifier"); name != nil {
		return strings.TrimSpace(name.Text())
	}
	return ""
}

// parameters returns the declared parameter nodes
func parameters(n syntax.Node) []syntax.Node {
	return listItems(syntax.ChildOfKind(n, "parameter_list"))
}

func parameterNames(params []syntax.Node) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, strings.TrimSpace(p.Text()))
	}
	return out
}

// bodyReturn finds a return statement among the first-level statements of a
// definition body
func bodyReturn(n syntax.Node) syntax.Node {
	return syntax.ChildOfKind(syntax.ChildOfKind(n, "block"), "return_statement")
}

// returnValue is the first expression a return statement yields, or nil
func returnValue(ret syntax.Node) syntax.Node {
	values := listItems(syntax.ChildOfKind(ret, "expression_list"))
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// collectSignatures declares every user-defined function of root ahead of
// lowering so calls may precede definitions
func (s *Session) collectSignatures(root syntax.Node) {
	syntax.Walk(root, func(n syntax.Node) bool {
		if !isDefinition(n) {
			return true
		}
		name := definitionName(n)
		if name == "" || s.tables.Ignored(name) {
			return true
		}
		if _, ok := s.tables.Callback(name); ok {
			return true
		}
		s.signatures.declare(newSignature(name, parameterNames(parameters(n)), bodyReturn(n)))
		return true
	})
}

type definitionTranslator struct{ base }

func newDefinitionTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &definitionTranslator{newBase(s, node, prev)}
}

func (t *definitionTranslator) Variant() Variant { return VariantDefinition }

func (t *definitionTranslator) Lower() (Result, error) {
	name := definitionName(t.node)
	if name == "" {
		return Result{}, t.s.errorf(errors.CodeUnsupportedShape, t.node, "function definition without a name")
	}
	if t.s.tables.Ignored(name) {
		t.s.logger.Debug("definition ignored", logging.StringField("name", name))
		return KeepCursor, nil
	}
	params := parameters(t.node)
	for _, p := range params {
		if p.Kind() != "identifier" {
			return Result{}, t.s.errorf(errors.CodeUnsupportedShape, p, "parameter %q of %s is not a plain name", p.Text(), name)
		}
	}
	if template, ok := t.s.tables.Callback(name); ok {
		return t.callback(template, params)
	}
	return t.procedure(name, params)
}

// callback fills an engine event template: each parameter binds to the next
// variable slot of the template
func (t *definitionTranslator) callback(template string, params []syntax.Node) (Result, error) {
	blk, err := t.block(template)
	if err != nil {
		return Result{}, err
	}
	var vars []blocks.Slot
	for _, slot := range blk.Slots() {
		if slot.Kind == blocks.SlotVariable {
			vars = append(vars, slot)
		}
	}
	for i, p := range params {
		id := t.declare(p)
		if i >= len(vars) {
			t.s.warn(errors.CodeSurplusArgument, p, "%s takes %d parameters; %q is not shown", template, len(vars), p.Text())
			continue
		}
		if err := t.setField(blk, vars[i].Name, id); err != nil {
			return Result{}, err
		}
	}
	if err := t.s.sequenceBody(t.node, blk, "input"); err != nil {
		return Result{}, err
	}
	// callback templates have no return input
	if ret := bodyReturn(t.node); returnValue(ret) != nil {
		t.s.warn(errors.CodeDroppedReturn, ret, "%s cannot return a value; %q is dropped", template, strings.TrimSpace(returnValue(ret).Text()))
	}
	return Produced(blk), nil
}

// procedure builds a user procedure definition and records its signature
func (t *definitionTranslator) procedure(name string, params []syntax.Node) (Result, error) {
	ret := bodyReturn(t.node)
	template := "procedures_defnoreturn"
	if ret != nil {
		template = "procedures_defreturn"
	}
	blk, err := t.block(template)
	if err != nil {
		return Result{}, err
	}
	blk.DisableStatementLinks()
	if err := t.setField(blk, "NAME", name); err != nil {
		return Result{}, err
	}

	sig := newSignature(name, parameterNames(params), ret)
	if sig.Mutation != nil {
		if err := t.s.at(blk.ApplyMutation(*sig.Mutation), t.node); err != nil {
			return Result{}, err
		}
	}
	if t.s.signatures.Define(sig) {
		t.s.warn(errors.CodeRedefinedFunction, t.node, "function %s is defined again; later calls use this definition", name)
	}
	for _, p := range params {
		t.declare(p)
	}

	if err := t.s.sequenceBody(t.node, blk, "STACK"); err != nil {
		return Result{}, err
	}
	if value := returnValue(ret); value != nil {
		if err := t.connectValue(blk, "RETURN", value); err != nil {
			return Result{}, err
		}
	}
	return Produced(blk), nil
}

// returnTranslator handles returns outside the first level of a procedure
// body; those are folded into the definition block itself
type returnTranslator struct{ base }

func newReturnTranslator(s *Session, node syntax.Node, prev blocks.Block) Translator {
	return &returnTranslator{newBase(s, node, prev)}
}

func (t *returnTranslator) Variant() Variant { return VariantReturn }

func (t *returnTranslator) Lower() (Result, error) {
	if parent := t.node.Parent(); parent != nil && isDefinition(parent.Parent()) {
		return KeepCursor, nil
	}
	blk, err := t.block("procedures_ifreturn")
	if err != nil {
		return Result{}, err
	}
	if value := returnValue(t.node); value != nil {
		if err := t.connectValue(blk, "VALUE", value); err != nil {
			return Result{}, err
		}
	}
	return Produced(blk), nil
}
