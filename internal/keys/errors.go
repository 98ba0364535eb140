package keys

import (
	"errors"
	"fmt"
)

// ErrOutOfKeys is returned when the pool has no available keys to issue.
var ErrOutOfKeys = errors.New("no api keys available")

// ErrMissingRecipient is returned when an issuance request has no email.
var ErrMissingRecipient = errors.New("email is required")

// PersistenceError wraps a failed write of the durable key record.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persist key record: %v", e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }
