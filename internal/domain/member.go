package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a room participant identified durably by its token.
// The owning Room is the only writer; sessions hold copies of the token and
// username, never the record itself.
type Member struct {
	Username Username
	Token    string
	Online   bool
	LastSeen time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
// The token is generated once and never reused.
func NewMember(username Username, online bool) *Member {
	return &Member{
		Username: username,
		Token:    uuid.NewString(),
		Online:   online,
		LastSeen: time.Now(),
	}
}

func (m *Member) SetOnline(online bool) {
	m.Online = online
	m.LastSeen = time.Now()
}

// MemberInfo is the wire-facing membership snapshot.
type MemberInfo struct {
	Username Username `json:"username"`
	IsOnline bool     `json:"is_online"`
}

func (m *Member) Info() MemberInfo {
	return MemberInfo{Username: m.Username, IsOnline: m.Online}
}
