package domain

import (
	"github.com/fieldvault/fieldvault/internal/errors"
)

var (
	// ErrRecordNotFound is returned when a protected record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrOwnerRequired is returned when a create request has no owner reference.
	ErrOwnerRequired = errors.Wrap(errors.ErrInvalidInput, "owner reference is required")

	// ErrDisplayNameRequired is returned when a create request has a blank display name.
	ErrDisplayNameRequired = errors.Wrap(errors.ErrInvalidInput, "display name is required")

	// ErrRecordIDRequired is returned when an update request has no record id.
	ErrRecordIDRequired = errors.Wrap(errors.ErrInvalidInput, "record id is required")
)
