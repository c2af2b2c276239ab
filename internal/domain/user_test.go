package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Username
		wantErr error
	}{
		{name: "two chars", input: "ab", want: "ab"},
		{name: "simple", input: "jan", want: "jan"},
		{name: "mixed case and digits", input: "Jan123", want: "Jan123"},
		{name: "max length", input: strings.Repeat("A", 32), want: Username(strings.Repeat("A", 32))},
		{name: "trims whitespace", input: "  jan  ", want: "jan"},
		{name: "empty", input: "", wantErr: ErrUsernameTooShort},
		{name: "one char", input: "a", wantErr: ErrUsernameTooShort},
		{name: "whitespace only", input: "   ", wantErr: ErrUsernameTooShort},
		{name: "too long", input: strings.Repeat("A", 33), wantErr: ErrUsernameTooLong},
		{name: "at sign", input: "jan@", wantErr: ErrUsernameCharset},
		{name: "inner space", input: "jan kowalski", wantErr: ErrUsernameCharset},
		{name: "hyphen", input: "jan-kowalski", wantErr: ErrUsernameCharset},
		{name: "underscore", input: "jan_kowalski", wantErr: ErrUsernameCharset},
		{name: "dot", input: "jan.kowalski", wantErr: ErrUsernameCharset},
		{name: "non-ascii", input: "żółć", wantErr: ErrUsernameCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUsername(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "four chars", input: "1234"},
		{name: "ordinary", input: "password123"},
		{name: "max length", input: strings.Repeat("a", 64)},
		{name: "special chars allowed", input: "p@ss w0rd!"},
		{name: "empty", input: "", wantErr: ErrPasswordTooShort},
		{name: "three chars", input: "abc", wantErr: ErrPasswordTooShort},
		{name: "too long", input: strings.Repeat("a", 65), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePassword(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Password(tt.input), got)
		})
	}
}
