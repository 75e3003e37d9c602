package flags

import (
	"fmt"

	"emperror.dev/errors"
)

const (
	// ErrNotFound is returned when an operation targets an unknown id
	ErrNotFound = errors.Sentinel("flag not found")

	// ErrDuplicateKey is returned when a (key, environment) pair is already taken
	ErrDuplicateKey = errors.Sentinel("flag key already exists")
)

// DuplicateKeyError describes the pair that collided with an existing flag
type DuplicateKeyError struct {
	Key         string
	Environment Environment
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("flag key '%s' already exists in %s", e.Key, e.Environment)
}

// Is lets errors.Is(err, ErrDuplicateKey) match
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// NotFoundError returns ErrNotFound annotated with the id that was looked up
func NotFoundError(id string) error {
	return errors.WithDetails(ErrNotFound, "id", id)
}
