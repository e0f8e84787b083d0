package spatialcheck

import (
	"errors"
	"fmt"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

var (
	// ErrNilDataset is returned when an engine is built without a dataset.
	ErrNilDataset = errors.New("dataset must not be nil")

	// ErrClosed is returned when an operation runs against a closed engine.
	ErrClosed = errors.New("engine is closed")
)

// ErrUnknownCaseType indicates a rule referencing a case type with no
// registered evaluator.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownCaseType struct {
	CaseType model.CaseType
	cause    error
}

func (e *ErrUnknownCaseType) Error() string {
	return fmt.Sprintf("unknown case type: %s", e.CaseType)
}

func (e *ErrUnknownCaseType) Unwrap() error { return e.cause }
