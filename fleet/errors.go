package fleet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports an operation on a key that is not in its collection.
var ErrNotFound = errors.New("not found")

// ValidationError reports missing required fields or references to
// stops/routes that do not exist.
type ValidationError struct {
	Msg        string
	InvalidIDs []string
}

func (e *ValidationError) Error() string {
	if len(e.InvalidIDs) > 0 {
		return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.InvalidIDs, ", "))
	}
	return e.Msg
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
