package errors

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType represents the class of failure
type ErrorType string

const (
	ErrorTypeSyntax      ErrorType = "SYNTAX"
	ErrorTypeTranslation ErrorType = "TRANSLATION"
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeSystem      ErrorType = "SYSTEM"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityWarning ErrorSeverity = "WARNING"
	SeverityError   ErrorSeverity = "ERROR"
	SeverityFatal   ErrorSeverity = "FATAL"
)

// Error codes produced while lowering a syntax tree.
const (
	CodeUnknownNodeKind      = "UNKNOWN_NODE_KIND"
	CodeUnknownOperator      = "UNKNOWN_OPERATOR"
	CodeUnknownUnaryOperator = "UNKNOWN_UNARY_OPERATOR"
	CodeUnboundSlot          = "UNBOUND_SLOT"
	CodeMissingSignature     = "MISSING_SIGNATURE"
	CodeNoReturnValue        = "NO_RETURN_VALUE"
	CodeMalformedCallShape   = "MALFORMED_CALL_SHAPE"
	CodeUnsupportedShape     = "UNSUPPORTED_SHAPE"
	CodeUndeclaredVariable   = "UNDECLARED_VARIABLE"
	CodeMutationAfterWiring  = "MUTATION_AFTER_WIRING"
	CodeUnknownTemplate      = "UNKNOWN_TEMPLATE"
	CodeUnknownRule          = "UNKNOWN_RULE"
	CodeInvalidTables        = "INVALID_TABLES"
	CodeParseError           = "PARSE_ERROR"

	// Warning-only codes
	CodeRedefinedFunction = "REDEFINED_FUNCTION"
	CodeSurplusArgument   = "SURPLUS_ARGUMENT"
	CodeDetachedBlock     = "DETACHED_BLOCK"
	CodeDroppedReturn     = "DROPPED_RETURN"
)

// Position is a 1-based source location
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// TranslationError represents a structured error with source information
type TranslationError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Kind      string                 `json:"kind,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Col       int                    `json:"col,omitempty"`
	Positions []Position             `json:"positions,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Severity  ErrorSeverity          `json:"severity"`
	Type      ErrorType              `json:"type"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *TranslationError) Error() string {
	var builder strings.Builder

	// Format: [TYPE][CODE] message
	builder.WriteString(fmt.Sprintf("[%s][%s] %s", e.Type, e.Code, e.Message))

	positions := uniquePositions(e.Positions)
	switch {
	case len(positions) > 1:
		builder.WriteString(" at")
		for i, pos := range positions {
			if i > 0 {
				builder.WriteString(" and")
			}
			builder.WriteString(fmt.Sprintf(" line %d col %d", pos.Line, pos.Column))
		}
	case len(positions) == 1:
		builder.WriteString(fmt.Sprintf(" line %d col %d", positions[0].Line, positions[0].Column))
	case e.Line > 0:
		builder.WriteString(fmt.Sprintf(" line %d col %d", e.Line, e.Col))
	}

	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying error
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code
func (e *TranslationError) Is(target error) bool {
	if other, ok := target.(*TranslationError); ok {
		return e.Code == other.Code
	}
	return false
}

// IsFatal reports whether the error aborts a translation run
func (e *TranslationError) IsFatal() bool {
	return e.Severity != SeverityWarning
}

// WithContext adds context information to the error
func (e *TranslationError) WithContext(key string, value interface{}) *TranslationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithPosition sets the line and column for the error
func (e *TranslationError) WithPosition(line, col int) *TranslationError {
	e.Line = line
	e.Col = col
	return e
}

// WithPositions records additional source locations, e.g. parser error nodes
func (e *TranslationError) WithPositions(positions ...Position) *TranslationError {
	for _, pos := range positions {
		if pos.Line > 0 {
			e.Positions = append(e.Positions, pos)
		}
	}
	return e
}

// WithKind records the syntax node kind the error was raised for
func (e *TranslationError) WithKind(kind string) *TranslationError {
	e.Kind = kind
	return e
}

// WithSeverity sets the severity level for the error
func (e *TranslationError) WithSeverity(severity ErrorSeverity) *TranslationError {
	e.Severity = severity
	return e
}

// Wrap sets the underlying cause
func (e *TranslationError) Wrap(err error) *TranslationError {
	e.Cause = err
	return e
}

func newError(errorType ErrorType, code, message string) *TranslationError {
	return &TranslationError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Severity:  SeverityFatal,
		Type:      errorType,
		Context:   make(map[string]interface{}),
	}
}

// NewTranslationError creates an error raised while lowering a node
func NewTranslationError(code, message string) *TranslationError {
	return newError(ErrorTypeTranslation, code, message)
}

// NewTranslationErrorf is NewTranslationError with formatting
func NewTranslationErrorf(code, format string, args ...interface{}) *TranslationError {
	return newError(ErrorTypeTranslation, code, fmt.Sprintf(format, args...))
}

// NewSyntaxError creates a parser error with line and column information
func NewSyntaxError(message string, line, col int) *TranslationError {
	return newError(ErrorTypeSyntax, CodeParseError, message).WithPosition(line, col)
}

// NewValidationError creates a configuration or table validation error
func NewValidationError(code, message string) *TranslationError {
	err := newError(ErrorTypeValidation, code, message)
	err.Severity = SeverityError
	return err
}

// NewSystemError creates a new system error
func NewSystemError(code, message string) *TranslationError {
	err := newError(ErrorTypeSystem, code, message)
	err.Severity = SeverityError
	return err
}

// WrapError wraps an existing error into a TranslationError
func WrapError(err error, code, message string) *TranslationError {
	return NewSystemError(code, message).Wrap(err)
}

// AsTranslationError finds the first TranslationError in err's chain
func AsTranslationError(err error) (*TranslationError, bool) {
	for err != nil {
		if te, ok := err.(*TranslationError); ok {
			return te, true
		}
		wrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = wrapper.Unwrap()
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	te, ok := AsTranslationError(err)
	for ok {
		if te.Code == code {
			return true
		}
		te, ok = AsTranslationError(te.Cause)
	}
	return false
}

// uniquePositions sorts positions and removes duplicates
func uniquePositions(positions []Position) []Position {
	if len(positions) <= 1 {
		return positions
	}

	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Column < sorted[j].Column
	})

	unique := sorted[:1]
	for _, pos := range sorted[1:] {
		if pos != unique[len(unique)-1] {
			unique = append(unique, pos)
		}
	}
	return unique
}
