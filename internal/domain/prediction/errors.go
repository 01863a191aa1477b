package prediction

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrUserNotFound       = errors.New("user profile not found")
	ErrGatewayUnavailable = errors.New("prediction service unavailable")
	ErrPersistenceFailed  = errors.New("failed to save assessment record")
)

// ValidationError names the first request field that is missing or not
// numeric. Validation is fail-fast; only one field is ever reported.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid or missing field: %s", e.Field)
}
