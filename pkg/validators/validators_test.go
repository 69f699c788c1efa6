package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("alice@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("alice"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Alice <alice@example.com>"), ErrEmailInvalid)

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("12345678"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("1234567"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestFileNameValidator(t *testing.T) {
	for _, ok := range []string{"a.txt", "Docs", "résumé final (2).pdf", ".hidden"} {
		assert.NoError(t, FileNameValidator(ok), ok)
	}

	assert.ErrorIs(t, FileNameValidator(""), ErrNameEmpty)
	assert.ErrorIs(t, FileNameValidator("   "), ErrNameEmpty)
	assert.ErrorIs(t, FileNameValidator(strings.Repeat("a", 256)), ErrNameTooLong)

	for _, bad := range []string{".", "..", "a/b", `a\b`, "a\x00b", "line\nbreak"} {
		assert.ErrorIs(t, FileNameValidator(bad), ErrNameInvalid, bad)
	}
}

func TestDisplayNameValidator(t *testing.T) {
	assert.NoError(t, DisplayNameValidator("Alice"))
	assert.ErrorIs(t, DisplayNameValidator(" "), ErrNameEmpty)
	assert.ErrorIs(t, DisplayNameValidator(strings.Repeat("é", 101)), ErrNameTooLong)
}
