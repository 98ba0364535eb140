package core

import "regexp"

// Closed age bounds enforced by v2 on creation.
const (
	MinAge = 18
	MaxAge = 65
)

var namePattern = regexp.MustCompile(`^[A-Za-z\s-]+$`)

// NewStrictRules returns the v2 rule set.
func NewStrictRules(updateAge UpdateAgePolicy) RuleSet {
	if updateAge == "" {
		updateAge = UpdateAgeNonNegative
	}
	return strictRules{updateAge: updateAge}
}

type strictRules struct {
	updateAge UpdateAgePolicy
}

func (strictRules) Version() Version { return VersionV2 }

func (r strictRules) ValidateCreate(in Input) (User, error) {
	if in.Name == nil || *in.Name == "" {
		return User{}, ValidationError{Message: "Name is required"}
	}
	if !namePattern.MatchString(*in.Name) {
		return User{}, ValidationError{Message: "Name must contain only letters, hyphens, and spaces"}
	}
	if in.Age == nil {
		return User{}, ValidationError{Message: "Age is required and must be between 18 and 65"}
	}
	if !withinBounds(*in.Age) {
		return User{}, ValidationError{Message: "Age must be between 18 and 65"}
	}
	return User{
		Name:   *in.Name,
		Age:    copyAge(in.Age),
		Status: r.Classify(in.Age),
	}, nil
}

// ValidateUpdate treats an empty name like an absent one.
func (r strictRules) ValidateUpdate(existing User, in Input) (User, error) {
	if in.Name != nil && *in.Name == "" {
		in.Name = nil
	}
	if in.Name != nil && !namePattern.MatchString(*in.Name) {
		return User{}, ValidationError{Message: "Name must contain only letters, hyphens, and spaces"}
	}
	if in.Age != nil {
		switch r.updateAge {
		case UpdateAgeBounded:
			if !withinBounds(*in.Age) {
				return User{}, ValidationError{Message: "Age must be between 18 and 65"}
			}
		default:
			if *in.Age < 0 {
				return User{}, ValidationError{Message: "Age must be a non-negative number"}
			}
		}
	}
	updated := existing.Clone()
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Age != nil {
		updated.Age = copyAge(in.Age)
		updated.Status = r.Classify(in.Age)
	}
	return updated, nil
}

func (strictRules) Classify(age *float64) Status {
	switch {
	case age == nil:
		return StatusCandidate
	case *age < MinAge:
		return StatusMinor
	case *age > MaxAge:
		return StatusRetired
	default:
		return StatusCandidate
	}
}

func (strictRules) LookupKey(rawID string) (int64, bool) {
	return ParseID(rawID)
}

func withinBounds(age float64) bool {
	return age >= MinAge && age <= MaxAge
}
