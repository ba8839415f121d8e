package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	pm := NewPasswordManager()

	hash, err := pm.HashPassword("Str0ng!Password")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Password", hash)

	require.NoError(t, pm.ComparePassword(hash, "Str0ng!Password"))
	require.Error(t, pm.ComparePassword(hash, "Wrong!Password1"))
}

func TestHashPasswordRejectsWeakInput(t *testing.T) {
	pm := NewPasswordManager()
	_, err := pm.HashPassword("short")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestValidatePassword(t *testing.T) {
	pm := NewPasswordManager()

	cases := map[string]struct {
		password string
		ok       bool
	}{
		"valid":     {"Str0ng!Password", true},
		"minimal":   {"Abcdefg1", true},
		"too short": {"Ab1", false},
		"no upper":  {"abcdefg1", false},
		"no lower":  {"ABCDEFG1", false},
		"no number": {"Abcdefgh", false},
		"empty":     {"", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := pm.ValidatePassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{
		"user@example.test",
		"first.last+tag@sub.example.co",
	} {
		assert.NoError(t, ValidateEmail(email), email)
	}
	for _, email := range []string{
		"", "not-an-email", "user@", "@example.test", "user@host", "user @example.test",
	} {
		assert.Error(t, ValidateEmail(email), email)
	}
}
