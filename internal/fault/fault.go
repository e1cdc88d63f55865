package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a build failure.
type Kind string

const (
	// KindStructuralViolation: an emitted graph breaks a structural invariant.
	KindStructuralViolation Kind = "structural_violation"
	// KindAnalysisUnavailable: a function's control-flow graph could not be built.
	KindAnalysisUnavailable Kind = "analysis_unavailable"
	// KindUnsupportedShape: the AST importer met a node outside its schema.
	KindUnsupportedShape Kind = "unsupported_shape"
	// KindHostIO: output could not be written or persisted.
	KindHostIO Kind = "host_io"
	// KindFrontEnd: the unit could not be loaded or type-checked.
	KindFrontEnd Kind = "front_end"
)

// Sentinels for errors.Is.
var (
	ErrStructuralViolation = errors.New("structural violation")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrUnsupportedShape    = errors.New("unsupported shape")
	ErrHostIO              = errors.New("host io failure")
	ErrFrontEnd            = errors.New("front end failure")
)

var sentinels = map[Kind]error{
	KindStructuralViolation: ErrStructuralViolation,
	KindAnalysisUnavailable: ErrAnalysisUnavailable,
	KindUnsupportedShape:    ErrUnsupportedShape,
	KindHostIO:              ErrHostIO,
	KindFrontEnd:            ErrFrontEnd,
}

// Error is a typed build error carrying the failing operation and unit.
type Error struct {
	Kind Kind
	Op   string
	Unit string
	Err  error
}

// New creates an error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf is New with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return New(kind, op, fmt.Errorf(format, args...))
}

// WithUnit records the unit path the error belongs to.
func (e *Error) WithUnit(path string) *Error {
	e.Unit = path
	return e
}

func (e *Error) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Op, e.Unit, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf extracts the Kind of err, or "" when err is not a typed error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsFatal reports whether err must abort the unit's build.
func IsFatal(err error) bool {
	return err != nil && KindOf(err) != KindAnalysisUnavailable
}
