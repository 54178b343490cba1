package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind classifies templating failures.
type ErrorKind int

const (
	// KindCompile is structurally illegal markup, reported by the compiler.
	KindCompile ErrorKind = iota
	// KindWireUp is an invalid resource graph found while instantiating or binding.
	KindWireUp
	// KindProjection is a slot destination that never resolved. It is only logged.
	KindProjection
)

func (k ErrorKind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindWireUp:
		return "wire-up"
	case KindProjection:
		return "projection"
	default:
		return "unknown"
	}
}

var (
	ErrLiftOnSurrogate      = errors.New("template controller cannot be placed on a surrogate element")
	ErrDuplicateLift        = errors.New("element carries more than one template controller")
	ErrUnknownInjector      = errors.New("instruction references an unknown parent injector")
	ErrMissingChangeHandler = errors.New("declared change handler is not defined on the view-model")
	ErrDuplicateAttribute   = errors.New("bindable attribute declared twice")
	ErrDuplicateProperty    = errors.New("bindable property declared twice")
	ErrUnknownInstruction   = errors.New("marker has no target instruction")
	ErrUnnamedResource      = errors.New("behavior resource has neither element nor attribute name")
	ErrNoViewModel          = errors.New("behavior resource has no view-model constructor")
)

// CompileError is returned by template compilation. It is never recoverable: the
// template has to be fixed.
type CompileError struct {
	Op      string // Operation that failed, e.g. "compile.element"
	Element string // Offending markup, shortened
	Err     error
}

func (e *CompileError) Kind() ErrorKind { return KindCompile }

func (e *CompileError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Element, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// WireUpError is returned while creating or binding views from a corrupt instruction
// table or an inconsistent resource graph.
type WireUpError struct {
	Op     string
	Target string // Resource or property involved
	Err    error
}

func (e *WireUpError) Kind() ErrorKind { return KindWireUp }

func (e *WireUpError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WireUpError) Unwrap() error { return e.Err }

// KindOf returns the kind of a templating error, or false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return KindCompile, true
	}
	var we *WireUpError
	if errors.As(err, &we) {
		return KindWireUp, true
	}
	return 0, false
}
