package pipeline

import (
	"errors"
	"fmt"

	"github.com/relaymind/autopilot/internal/model"
)

// ExtractionError reports that the model reply for an email could not be
// turned into a usable result. The email is skipped and marked processed so
// it does not re-trigger the same failure every run.
type ExtractionError struct {
	Kind model.ExtractionKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for kind %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtractionError reports whether err is (or wraps) an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// ValidationError reports that a candidate is missing fields the entity
// cannot exist without (e.g., a meeting with no parsable start time). The
// candidate is dropped; this is not a provider failure.
type ValidationError struct {
	Kind   model.ExtractionKind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s candidate: %s", e.Kind, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
