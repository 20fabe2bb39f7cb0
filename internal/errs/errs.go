package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound signals that the referenced product does not exist. Repositories
// wrap it with the offending ID; classification matches with errors.Is.
var ErrNotFound = errors.New("product not found")

// ValidationError carries every violation found in a write payload. A write is
// rejected with the complete list, not just the first mismatch.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// SyntaxError wraps a request body that could not be parsed as JSON at all.
type SyntaxError struct {
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid request body format: %v", e.Cause)
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// Classify maps a raised error to an HTTP status and JSON body. Precedence:
// validation, then syntax, then not-found. Any other error reports ok=false
// and must be re-raised by the caller rather than swallowed, so platform-level
// error reporting stays intact.
func Classify(err error) (status int, body interface{}, ok bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, map[string]interface{}{"errors": ve.Errors}, true
	}

	var se *SyntaxError
	if errors.As(err, &se) {
		return http.StatusBadRequest, map[string]interface{}{"error": se.Error()}, true
	}

	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound, map[string]interface{}{"error": "not found"}, true
	}

	return 0, nil, false
}
