package generator

import (
	"crypto/rand"
	"regexp"
)

// The URL-safe alphabet has 64 characters, so a 7-character code gives
// 64^7 (~4.4e12) possibilities and collisions stay negligible.
const (
	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	CodeLength = 7

	SlugMinLength = 3
	SlugMaxLength = 50
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateShortCode returns a random 7-character code drawn from the
// URL-safe alphabet using crypto/rand.
func GenerateShortCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		// 64 characters, so the low 6 bits index the alphabet uniformly.
		buf[i] = alphabet[b&0x3f]
	}

	return string(buf), nil
}

// ValidSlug reports whether a caller-chosen slug satisfies the charset and
// length constraints shared with generated codes.
func ValidSlug(slug string) bool {
	if len(slug) < SlugMinLength || len(slug) > SlugMaxLength {
		return false
	}
	return slugPattern.MatchString(slug)
}
