package validators

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNameEmpty   = errors.New("name can't be empty")
	ErrNameTooLong = errors.New("name is too long")
	ErrNameInvalid = errors.New("name contains invalid characters")
)

const maxFileNameSize = 255

// FileNameValidator checks names of files and folders. Names are only ever
// stored in the database, but they end up in Content-Disposition headers and
// in breadcrumbs so path separators and control characters are refused.
func FileNameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if len(n) > maxFileNameSize {
		return ErrNameTooLong
	}

	if !utf8.ValidString(n) || n == "." || n == ".." {
		return ErrNameInvalid
	}

	for _, r := range n {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return ErrNameInvalid
		}
	}

	return nil
}

// DisplayNameValidator checks the name a user shows to others
func DisplayNameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if utf8.RuneCountInString(n) > 100 {
		return ErrNameTooLong
	}

	return nil
}
