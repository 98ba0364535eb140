package core

import "usergate/pkg/domain"

type (
	EntityType      = domain.EntityType
	Status          = domain.Status
	Version         = domain.Version
	User            = domain.User
	Input           = domain.Input
	RuleSet         = domain.RuleSet
	ValidationError = domain.ValidationError
	ErrNotFound     = domain.ErrNotFound
)

const (
	EntityUser   = domain.EntityUser
	EntityAPIKey = domain.EntityAPIKey
)

const (
	StatusMinor     = domain.StatusMinor
	StatusCandidate = domain.StatusCandidate
	StatusRetired   = domain.StatusRetired
)

const (
	VersionV1 = domain.VersionV1
	VersionV2 = domain.VersionV2
)
