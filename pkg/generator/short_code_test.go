package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode_BasicProperties(t *testing.T) {
	code, err := GenerateShortCode()

	assert.NoError(t, err)

	assert.Len(t, code, CodeLength, "Short code should be 7 characters long")

	assert.Regexp(t, "^[A-Za-z0-9_-]+$", code, "Short code should only contain URL-safe characters")
}

func TestGenerateShortCode_Uniqueness(t *testing.T) {
	codes := make(map[string]bool, 1000)

	for i := 0; i < 1000; i++ {
		code, err := GenerateShortCode()
		assert.NoError(t, err)

		assert.False(t, codes[code], "Duplicate code generated: %s", code)
		codes[code] = true
	}

	assert.Equal(t, 1000, len(codes), "Should generate 1000 unique codes")
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{"simple slug", "promo", true},
		{"with hyphen and underscore", "my-link_2", true},
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("a", 50), true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 51), false},
		{"illegal characters", "pro mo!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSlug(tt.slug))
		})
	}
}
