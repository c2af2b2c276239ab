package protocol

// ErrorKind names a structured error reported to a client.
type ErrorKind string

const (
	KindTokenNotFound     ErrorKind = "token_not_found"
	KindTokenAlreadyInUse ErrorKind = "token_already_in_use"
	KindRoomNotFound      ErrorKind = "room_not_found"
	KindInvalidUsername   ErrorKind = "invalid_username"
	KindUsernameTaken     ErrorKind = "username_taken"
	KindPasswordRequired  ErrorKind = "password_required"
	KindIncorrectPassword ErrorKind = "incorrect_password"
	KindJoinTimeout       ErrorKind = "join_timeout"
	KindOther             ErrorKind = "other"
)

// Error is the structured error envelope. Message is set only for kinds
// that carry one (invalid_username, other).
type Error struct {
	Type    string    `json:"type"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message,omitempty"`
}

func NewError(kind ErrorKind, message string) Error {
	return Error{Type: TypeError, Kind: kind, Message: message}
}
