// Package domain contains validated identity types, no state or transport.
package domain

import "errors"

const (
	MinUsernameLen = 2
	MaxUsernameLen = 32

	MinPasswordLen = 4
	MaxPasswordLen = 64
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 2 characters")
	ErrUsernameTooLong  = errors.New("username must be at most 32 characters")
	ErrUsernameCharset  = errors.New("username must contain only letters and numbers")

	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 64 characters")
)

// Username is a validated participant name. Uniqueness is enforced per
// room, not here.
type Username string

// ParseUsername trims surrounding whitespace and validates length and
// charset (ASCII letters and digits only).
func ParseUsername(s string) (Username, error) {
	trimmed := trimSpace(s)
	if len(trimmed) < MinUsernameLen {
		return "", ErrUsernameTooShort
	}
	if len(trimmed) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	for i := 0; i < len(trimmed); i++ {
		if !isAlphanumeric(trimmed[i]) {
			return "", ErrUsernameCharset
		}
	}
	return Username(trimmed), nil
}

func (u Username) String() string { return string(u) }

// Password is a validated room password. No charset restriction.
type Password string

func ParsePassword(s string) (Password, error) {
	if len(s) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	if len(s) > MaxPasswordLen {
		return "", ErrPasswordTooLong
	}
	return Password(s), nil
}

func isAlphanumeric(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
