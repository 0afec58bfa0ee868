package domain

import "errors"

var (
	// ErrNotFound covers both absent records and records not owned by the
	// caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrExpired means the link once existed but has lapsed.
	ErrExpired = errors.New("link expired")

	// ErrCodeTaken is the storage-level uniqueness violation on the combined
	// short code / custom slug namespace.
	ErrCodeTaken = errors.New("short code already in use")

	ErrSlugTaken   = errors.New("custom slug already taken")
	ErrInvalidSlug = errors.New("custom slug must be 3-50 characters of letters, numbers, hyphens, and underscores")

	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
