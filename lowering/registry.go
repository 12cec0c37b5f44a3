package lowering

import (
	"sort"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/syntax"
)

// Factory instantiates the translator for one node. prev is the block the
// sequencer cursor currently points at.
type Factory func(s *Session, node syntax.Node, prev blocks.Block) Translator

// Registry maps syntax node kinds to translator factories
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds kind to f. A later registration of the same kind wins.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Resolve instantiates the translator for node. An unregistered kind is a
// fatal UNKNOWN_NODE_KIND error.
func (r *Registry) Resolve(s *Session, node syntax.Node, prev blocks.Block) (Translator, error) {
	f, ok := r.factories[node.Kind()]
	if !ok {
		pos := node.Pos()
		return nil, errors.NewTranslationErrorf(errors.CodeUnknownNodeKind, "no translator for node kind %q", node.Kind()).
			WithKind(node.Kind()).
			WithPosition(pos.Line, pos.Column)
	}
	return f(s, node, prev), nil
}

// Has reports whether kind is registered
func (r *Registry) Has(kind string) bool {
	_, ok := r.factories[kind]
	return ok
}

// Kinds lists the registered kinds sorted
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Clone copies the registry so callers can override kinds locally
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for k, f := range r.factories {
		c.factories[k] = f
	}
	return c
}

// DefaultRegistry returns a fresh registry with every built-in translator
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("number", newNumberTranslator)
	r.Register("string", newStringTranslator)
	r.Register("true", newBooleanTranslator)
	r.Register("false", newBooleanTranslator)
	r.Register("nil", newNilTranslator)
	r.Register("identifier", newIdentifierTranslator)
	r.Register("variable", newVariableTranslator)
	r.Register("parenthesized_expression", newParenthesizedTranslator)

	r.Register("binary_expression", newBinaryTranslator)
	r.Register("unary_expression", newUnaryTranslator)
	r.Register("table", newTableTranslator)

	r.Register("variable_assignment", newAssignmentTranslator)
	r.Register("local_variable_declaration", newLocalTranslator)

	r.Register("if_statement", newIfTranslator)
	r.Register("for_numeric_statement", newForNumericTranslator)
	r.Register("for_generic_statement", newForGenericTranslator)
	r.Register("while_statement", newWhileTranslator)
	r.Register("repeat_statement", newRepeatTranslator)
	r.Register("break_statement", newBreakTranslator)

	r.Register("function_definition_statement", newDefinitionTranslator)
	r.Register("local_function_definition_statement", newDefinitionTranslator)
	r.Register("return_statement", newReturnTranslator)
	r.Register("call", newCallTranslator)

	r.Register("comment", newCommentTranslator)
	r.Register("empty_line", newBlankLineTranslator)
	r.Register("shebang", newShebangTranslator)

	return r
}
