package errors

// RecoveryAction represents what the driver does with an error
type RecoveryAction string

const (
	RecoveryActionAbort RecoveryAction = "ABORT"
	RecoveryActionWarn  RecoveryAction = "WARN"
)

// ErrorHandler decides whether an error aborts the translation run
type ErrorHandler interface {
	// Recover returns the action for err
	Recover(err error) RecoveryAction
}

// Policy is a per-code ErrorHandler. Codes without an entry abort.
type Policy struct {
	actions map[string]RecoveryAction
}

// NewPolicy creates a policy where every code aborts
func NewPolicy() *Policy {
	return &Policy{actions: make(map[string]RecoveryAction)}
}

// Set overrides the action for a code
func (p *Policy) Set(code string, action RecoveryAction) *Policy {
	p.actions[code] = action
	return p
}

// Recover implements ErrorHandler
func (p *Policy) Recover(err error) RecoveryAction {
	te, ok := AsTranslationError(err)
	if !ok {
		return RecoveryActionAbort
	}
	if action, exists := p.actions[te.Code]; exists {
		return action
	}
	return RecoveryActionAbort
}

// Downgrade marks err as a warning when the handler lets the run continue.
// It returns nil when the run may continue.
func Downgrade(h ErrorHandler, err error) error {
	if err == nil || h == nil {
		return err
	}
	if h.Recover(err) != RecoveryActionWarn {
		return err
	}
	if te, ok := AsTranslationError(err); ok {
		te.Severity = SeverityWarning
	}
	return nil
}
