package domain

import (
	"errors"
	"strings"
)

// RoomID is the canonical textual form of a room identifier: 36 hyphenated
// hex characters grouped 8-4-4-4-12. Input is case-insensitive; the stored
// and compared form is lowercase.
type RoomID string

var ErrInvalidRoomID = errors.New("invalid room ID format")

var roomIDGroupLens = [5]int{8, 4, 4, 4, 12}

// ParseRoomID validates the UUID shape and returns the normalized id.
func ParseRoomID(s string) (RoomID, error) {
	trimmed := trimSpace(s)
	if len(trimmed) != 36 {
		return "", ErrInvalidRoomID
	}
	parts := strings.Split(trimmed, "-")
	if len(parts) != 5 {
		return "", ErrInvalidRoomID
	}
	for i, part := range parts {
		if len(part) != roomIDGroupLens[i] {
			return "", ErrInvalidRoomID
		}
		for j := 0; j < len(part); j++ {
			if !isHexDigit(part[j]) {
				return "", ErrInvalidRoomID
			}
		}
	}
	return RoomID(strings.ToLower(trimmed)), nil
}

func (id RoomID) String() string { return string(id) }

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
