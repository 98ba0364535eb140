package core

// NewLegacyRules returns the v1 rule set. It accepts any non-empty name,
// rejects only negative ages, and never classifies a user as retired.
func NewLegacyRules(minorThreshold float64, requireAge bool) RuleSet {
	return legacyRules{minorThreshold: minorThreshold, requireAge: requireAge}
}

type legacyRules struct {
	minorThreshold float64
	requireAge     bool
}

func (legacyRules) Version() Version { return VersionV1 }

func (r legacyRules) ValidateCreate(in Input) (User, error) {
	hasName := in.Name != nil && *in.Name != ""
	if r.requireAge {
		if !hasName || in.Age == nil {
			return User{}, ValidationError{Message: "Both name and age are required"}
		}
	} else if !hasName {
		return User{}, ValidationError{Message: "Name is required"}
	}
	if in.Age != nil && *in.Age < 0 {
		return User{}, ValidationError{Message: "Invalid age value"}
	}
	return User{
		Name:   *in.Name,
		Age:    copyAge(in.Age),
		Status: r.Classify(in.Age),
	}, nil
}

func (r legacyRules) ValidateUpdate(existing User, in Input) (User, error) {
	if in.Name != nil && *in.Name == "" {
		return User{}, ValidationError{Message: "Name is required"}
	}
	if in.Age != nil && *in.Age < 0 {
		return User{}, ValidationError{Message: "Invalid age value"}
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

// Classify has no upper bound: v1 never produces StatusRetired.
func (r legacyRules) Classify(age *float64) Status {
	if age != nil && *age < r.minorThreshold {
		return StatusMinor
	}
	return StatusCandidate
}

// LookupKey reproduces the legacy off-by-one: "/v1/api/users/2" reads user 1.
func (legacyRules) LookupKey(rawID string) (int64, bool) {
	id, ok := ParseID(rawID)
	if !ok {
		return 0, false
	}
	return id - 1, true
}
