// Package protocol defines the JSON envelopes exchanged over the websocket.
// Every message carries a snake_case "type" tag.
package protocol

import "github.com/dkeye/Gather/internal/domain"

// Client -> server message types.
const (
	TypeJoin         = "join"
	TypeLeave        = "leave"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeIceCandidate = "ice_candidate"
	TypeChatMessage  = "chat_message"
)

// Server -> client message types.
const (
	TypeJoinedAs         = "joined_as"
	TypeMemberJoined     = "member_joined"
	TypeMemberLeft       = "member_left"
	TypeMemberList       = "member_list"
	TypeSignalingMessage = "signaling_message"
	TypeChat             = "chat"
	TypeError            = "error"
)

// Join request kinds.
const (
	JoinWithToken    = "with_token"
	JoinWithUsername = "with_username"
)

// Signaling payload kinds.
const (
	SignalOffer        = "offer"
	SignalAnswer       = "answer"
	SignalIceCandidate = "ice_candidate"
)

// ClientMessage is the flattened inbound envelope. Which fields are
// meaningful depends on Type (and, for joins, Kind).
type ClientMessage struct {
	Type string `json:"type"`

	// join
	Kind     string  `json:"kind,omitempty"`
	Token    string  `json:"token,omitempty"`
	Username string  `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`

	// offer / answer / ice_candidate
	To        string `json:"to,omitempty"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`

	// chat_message
	Message string `json:"message,omitempty"`
}

type JoinedAs struct {
	Type     string          `json:"type"`
	Username domain.Username `json:"username"`
	Token    string          `json:"token"`
	IsOwner  bool            `json:"is_owner"`
}

func NewJoinedAs(username domain.Username, token string, isOwner bool) JoinedAs {
	return JoinedAs{Type: TypeJoinedAs, Username: username, Token: token, IsOwner: isOwner}
}

type MemberJoined struct {
	Type     string          `json:"type"`
	Username domain.Username `json:"username"`
}

func NewMemberJoined(username domain.Username) MemberJoined {
	return MemberJoined{Type: TypeMemberJoined, Username: username}
}

type MemberLeft struct {
	Type     string          `json:"type"`
	Username domain.Username `json:"username"`
}

func NewMemberLeft(username domain.Username) MemberLeft {
	return MemberLeft{Type: TypeMemberLeft, Username: username}
}

type MemberList struct {
	Type    string              `json:"type"`
	Members []domain.MemberInfo `json:"members"`
}

func NewMemberList(members []domain.MemberInfo) MemberList {
	return MemberList{Type: TypeMemberList, Members: members}
}

// SignalingPayload carries opaque peer-negotiation data. The server never
// inspects SDP or candidate contents.
type SignalingPayload struct {
	Kind      string `json:"kind"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`
}

type SignalingMessage struct {
	Type    string           `json:"type"`
	From    domain.Username  `json:"from"`
	Payload SignalingPayload `json:"payload"`
}

func NewSignalingMessage(from domain.Username, payload SignalingPayload) SignalingMessage {
	return SignalingMessage{Type: TypeSignalingMessage, From: from, Payload: payload}
}

type Chat struct {
	Type    string          `json:"type"`
	From    domain.Username `json:"from"`
	Message string          `json:"message"`
}

func NewChat(from domain.Username, message string) Chat {
	return Chat{Type: TypeChat, From: from, Message: message}
}
