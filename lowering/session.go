// Package lowering translates a syntax tree into a block graph: a registry
// dispatches node kinds to translators, translators build blocks and the
// sequencer links them into statement chains and nested bodies.
package lowering

import (
	"fmt"

	"github.com/Figliar/extension-plus-API/blocks"
	"github.com/Figliar/extension-plus-API/errors"
	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/syntax"
)

// DefaultMargin is the vertical gap between unlinked top-level stacks
const DefaultMargin = 30

type options struct {
	forwardCalls     bool
	implicitGlobals  bool
	lenientOperators bool
	margin           int
	logger           logging.Logger
	registry         *Registry
}

// Option configures a Session
type Option func(*options)

// WithForwardCalls collects every top-level function signature before
// lowering so calls may precede their definitions
func WithForwardCalls(enabled bool) Option {
	return func(o *options) { o.forwardCalls = enabled }
}

// WithImplicitGlobals lets reads of undeclared names create the variable
// with a warning instead of failing
func WithImplicitGlobals(enabled bool) Option {
	return func(o *options) { o.implicitGlobals = enabled }
}

// WithLenientOperators lowers unknown binary operators to an UNKNOWN
// operation field with a warning instead of failing
func WithLenientOperators(enabled bool) Option {
	return func(o *options) { o.lenientOperators = enabled }
}

// WithMargin sets the gap between unlinked top-level stacks
func WithMargin(margin int) Option {
	return func(o *options) { o.margin = margin }
}

// WithLogger sets the logger; the default drops everything
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry replaces the default translator registry
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// Report summarises one Translate call
type Report struct {
	Warnings     []*errors.TranslationError
	Signatures   []Signature
	TopBlocks    []blocks.Block
	SyntaxErrors []syntax.Node
}

// Session holds the mutable state of translating into one workspace: the
// signature table, the warnings and the top-level cursor. A Session must
// not be used from several goroutines.
type Session struct {
	ws         blocks.Workspace
	tables     *lookup.Tables
	registry   *Registry
	signatures *SignatureTable
	policy     *errors.Policy
	logger     logging.Logger
	opts       options
	warnings   []*errors.TranslationError
	lastTop    blocks.Block
}

type catalogHolder interface {
	Catalog() *blocks.Catalog
}

// rewinder is a workspace that can drop what a failed run created
type rewinder interface {
	Checkpoint() blocks.Checkpoint
	Rewind(blocks.Checkpoint)
}

// NewSession prepares a translation into ws using tables. A nil tables means
// lookup.Default. Unknown rule names and, when ws exposes its catalog,
// unknown templates are rejected here.
func NewSession(ws blocks.Workspace, tables *lookup.Tables, opts ...Option) (*Session, error) {
	o := options{forwardCalls: true, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if tables == nil {
		tables = lookup.Default()
	}

	for _, rule := range tables.Rules() {
		if !KnownRule(rule) {
			return nil, errors.NewValidationError(errors.CodeUnknownRule, fmt.Sprintf("unknown special rule %q", rule))
		}
	}
	if holder, ok := ws.(catalogHolder); ok {
		catalog := holder.Catalog()
		for _, tmpl := range tables.Templates() {
			if !catalog.Has(tmpl) {
				return nil, errors.NewValidationError(errors.CodeUnknownTemplate,
					fmt.Sprintf("lookup tables name unknown template %q", tmpl))
			}
		}
	}

	policy := errors.NewPolicy()
	if o.lenientOperators {
		policy.Set(errors.CodeUnknownOperator, errors.RecoveryActionWarn)
	}
	if o.implicitGlobals {
		policy.Set(errors.CodeUndeclaredVariable, errors.RecoveryActionWarn)
	}

	return &Session{
		ws:         ws,
		tables:     tables,
		registry:   o.registry,
		signatures: NewSignatureTable(),
		policy:     policy,
		logger:     o.logger.WithComponent("lowering"),
		opts:       o,
	}, nil
}

// Workspace returns the target workspace
func (s *Session) Workspace() blocks.Workspace { return s.ws }

// Tables returns the lookup configuration
func (s *Session) Tables() *lookup.Tables { return s.tables }

// Registry returns the translator registry
func (s *Session) Registry() *Registry { return s.registry }

// Signatures returns the signature table
func (s *Session) Signatures() *SignatureTable { return s.signatures }

// Warnings returns every warning recorded so far
func (s *Session) Warnings() []*errors.TranslationError {
	return append([]*errors.TranslationError(nil), s.warnings...)
}

// Translate lowers every top-level node of root into the workspace. A fatal
// error aborts the run; the report then lists the syntax error nodes of
// root alongside it. The signatures and warnings of the failed run are
// discarded, and so are its blocks and variables when the workspace can
// rewind.
func (s *Session) Translate(root syntax.Node) (*Report, error) {
	firstWarning := len(s.warnings)
	firstBlock := len(s.ws.Blocks())
	signatures := s.signatures.clone()
	var checkpoint blocks.Checkpoint
	rw, canRewind := s.ws.(rewinder)
	if canRewind {
		checkpoint = rw.Checkpoint()
	}

	if s.opts.forwardCalls {
		s.collectSignatures(root)
	}

	err := s.Sequence(syntax.Children(root), nil, "")

	report := &Report{
		Warnings:   append([]*errors.TranslationError(nil), s.warnings[firstWarning:]...),
		Signatures: s.signatures.All(),
	}
	if err != nil {
		report.SyntaxErrors = syntax.FindErrors(root)
		if te, ok := errors.AsTranslationError(err); ok {
			for _, n := range report.SyntaxErrors {
				p := n.Pos()
				te.WithPositions(errors.Position{Line: p.Line, Column: p.Column})
			}
		}
		s.logger.ErrorTranslation(err, logging.IntField("syntax_errors", len(report.SyntaxErrors)))

		s.signatures = signatures
		report.Signatures = signatures.All()
		s.warnings = s.warnings[:firstWarning]
		if canRewind {
			rw.Rewind(checkpoint)
		}
		return report, err
	}

	fresh := make(map[blocks.Block]bool)
	for _, b := range s.ws.Blocks()[firstBlock:] {
		fresh[b] = true
	}
	for _, b := range s.ws.TopBlocks() {
		if fresh[b] {
			report.TopBlocks = append(report.TopBlocks, b)
		}
	}
	s.logger.Debug("translation finished",
		logging.IntField("top_blocks", len(report.TopBlocks)),
		logging.IntField("warnings", len(report.Warnings)))
	return report, nil
}

// Lower translates an expression node into the block it produces
func (s *Session) Lower(node syntax.Node) (blocks.Block, error) {
	tr, err := s.registry.Resolve(s, node, nil)
	if err != nil {
		return nil, err
	}
	res, err := tr.Lower()
	if err != nil {
		return nil, err
	}
	if res.Keep || res.Block == nil {
		return nil, s.errorf(errors.CodeUnsupportedShape, node, "%s does not produce a value", node.Kind())
	}
	return res.Block, nil
}

// Reset forgets signatures, warnings and the top-level cursor
func (s *Session) Reset() {
	s.signatures = NewSignatureTable()
	s.warnings = nil
	s.lastTop = nil
}

// errorf builds a fatal error positioned at node
func (s *Session) errorf(code string, node syntax.Node, format string, args ...interface{}) *errors.TranslationError {
	err := errors.NewTranslationErrorf(code, format, args...)
	if node != nil {
		p := node.Pos()
		err.WithKind(node.Kind()).WithPosition(p.Line, p.Column)
	}
	return err
}

// at adds node's kind and position to err when it carries none
func (s *Session) at(err error, node syntax.Node) error {
	if err == nil || node == nil {
		return err
	}
	if te, ok := errors.AsTranslationError(err); ok && te.Line == 0 {
		p := node.Pos()
		te.WithPosition(p.Line, p.Column)
		if te.Kind == "" {
			te.WithKind(node.Kind())
		}
	}
	return err
}

// recoverable passes err through the policy. It returns nil and records a
// warning when the run may continue.
func (s *Session) recoverable(err *errors.TranslationError) error {
	if errors.Downgrade(s.policy, err) != nil {
		return err
	}
	s.record(err)
	return nil
}

// warn records a warning positioned at node
func (s *Session) warn(code string, node syntax.Node, format string, args ...interface{}) {
	err := s.errorf(code, node, format, args...).WithSeverity(errors.SeverityWarning)
	s.record(err)
}

func (s *Session) record(err *errors.TranslationError) {
	s.warnings = append(s.warnings, err)
	s.logger.ErrorTranslation(err)
}
