package core

import (
	"errors"

	"github.com/dkeye/Gather/internal/domain"
	"github.com/dkeye/Gather/internal/protocol"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenAlreadyInUse = errors.New("token already in use")
	ErrUsernameTaken     = errors.New("username taken")
	ErrPasswordRequired  = errors.New("password required")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrForbidden         = errors.New("forbidden")
)

// ErrorKindOf translates core and domain errors into the wire taxonomy.
// Kinds that carry a message (invalid_username, other) get the error text.
func ErrorKindOf(err error) (protocol.ErrorKind, string) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return protocol.KindRoomNotFound, ""
	case errors.Is(err, ErrTokenNotFound):
		return protocol.KindTokenNotFound, ""
	case errors.Is(err, ErrTokenAlreadyInUse):
		return protocol.KindTokenAlreadyInUse, ""
	case errors.Is(err, ErrUsernameTaken):
		return protocol.KindUsernameTaken, ""
	case errors.Is(err, ErrPasswordRequired):
		return protocol.KindPasswordRequired, ""
	case errors.Is(err, ErrIncorrectPassword):
		return protocol.KindIncorrectPassword, ""
	case errors.Is(err, domain.ErrUsernameTooShort),
		errors.Is(err, domain.ErrUsernameTooLong),
		errors.Is(err, domain.ErrUsernameCharset):
		return protocol.KindInvalidUsername, err.Error()
	default:
		return protocol.KindOther, err.Error()
	}
}
