package domain

import "fmt"

// RuleSet is the validation and derivation policy of one API version. Rule
// sets are pure: they never touch storage and never allocate identifiers.
type RuleSet interface {
	Version() Version
	// ValidateCreate checks a creation request and returns the normalized
	// user (without an ID) including its derived status.
	ValidateCreate(in Input) (User, error)
	// ValidateUpdate merges the fields present in the request into existing.
	// Status is recomputed only when the age changes.
	ValidateUpdate(existing User, in Input) (User, error)
	// Classify derives the status for an age. A nil age yields candidate.
	Classify(age *float64) Status
	// LookupKey maps a raw path identifier to the stored key for reads.
	LookupKey(rawID string) (int64, bool)
}

// ValidationError reports malformed or out-of-range input. Message names the
// exact rule that was violated and is returned to clients verbatim.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
