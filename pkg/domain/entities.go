// Package domain defines the persistent entities, value types, and storage
// contracts shared by usergate's service and infrastructure layers.
package domain

import (
	"encoding/json"
	"fmt"
)

// EntityType identifies the type of record managed by the service.
type EntityType string

const (
	// EntityUser identifies a user record.
	EntityUser EntityType = "user"
	// EntityAPIKey identifies an API key credential.
	EntityAPIKey EntityType = "api_key"
)

// Status is the classification derived from a user's age by the active rule set.
type Status string

const (
	StatusMinor     Status = "minor"
	StatusCandidate Status = "candidate"
	StatusRetired   Status = "retired"
)

// Valid reports whether s is one of the known classifications.
func (s Status) Valid() bool {
	switch s {
	case StatusMinor, StatusCandidate, StatusRetired:
		return true
	default:
		return false
	}
}

// Version selects the validation and derivation policy for a request.
type Version string

const (
	// VersionV1 is the lenient legacy policy.
	VersionV1 Version = "v1"
	// VersionV2 is the strictly validated policy.
	VersionV2 Version = "v2"
)

// ParseVersion converts a path prefix such as "v2" into a Version.
func ParseVersion(raw string) (Version, error) {
	switch Version(raw) {
	case VersionV1, VersionV2:
		return Version(raw), nil
	default:
		return "", fmt.Errorf("unknown api version %q", raw)
	}
}

// User is the managed resource. Age is nil only when a v1 deployment accepts
// creation without an age.
type User struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Age    *float64 `json:"age"`
	Status Status   `json:"status"`
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	cp := u
	if u.Age != nil {
		age := *u.Age
		cp.Age = &age
	}
	return cp
}

// Input carries caller-supplied user fields. A nil field was absent or null.
type Input struct {
	Name *string
	Age  *float64
}

// UnmarshalJSON decodes an input object, reporting wrongly typed fields as
// validation errors rather than decoding failures.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = Input{}
	if v, ok := raw["name"]; ok && !isNull(v) {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return ValidationError{Message: "Name must be a string"}
		}
		in.Name = &name
	}
	if v, ok := raw["age"]; ok && !isNull(v) {
		var age float64
		if err := json.Unmarshal(v, &age); err != nil {
			return ValidationError{Message: "Age must be a number"}
		}
		in.Age = &age
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// AgePtr returns a pointer to age.
func AgePtr(age float64) *float64 { return &age }
