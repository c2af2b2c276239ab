package core

import (
	"crypto/subtle"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/domain"
	"github.com/dkeye/Gather/internal/protocol"
)

// Room owns its member table, password, owner capability, activity
// timestamp and broadcast hub. Except for the hub (internally locked),
// all state is guarded by the Registry: every method below other than
// Hub, ID and OwnerToken must be called while holding the registry lock.
type Room struct {
	id         domain.RoomID
	ownerToken string
	password   *domain.Password

	members map[string]*domain.Member
	order   []string // member tokens in insertion order

	lastActivity time.Time
	hub          *Hub
}

func NewRoom(password *domain.Password, backlog int) *Room {
	return &Room{
		id:           domain.RoomID(uuid.NewString()),
		ownerToken:   uuid.NewString(),
		password:     password,
		members:      make(map[string]*domain.Member),
		lastActivity: time.Now(),
		hub:          NewHub(backlog),
	}
}

func (r *Room) ID() domain.RoomID  { return r.id }
func (r *Room) OwnerToken() string { return r.ownerToken }
func (r *Room) Hub() *Hub          { return r.hub }

func (r *Room) HasPassword() bool { return r.password != nil }

// IsOwner authorizes room deletion. Plain equality: the owner token is
// never attacker-supplied in a password-oracle sense.
func (r *Room) IsOwner(token string) bool {
	return r.ownerToken == token
}

// VerifyPassword compares in fixed time so the elapsed time does not
// depend on where the first mismatching byte occurs.
func (r *Room) VerifyPassword(candidate *domain.Password) error {
	switch {
	case r.password == nil:
		return nil
	case candidate == nil:
		return ErrPasswordRequired
	case subtle.ConstantTimeCompare([]byte(*r.password), []byte(*candidate)) == 1:
		return nil
	default:
		return ErrIncorrectPassword
	}
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

func (r *Room) usernameTaken(username domain.Username) bool {
	for _, m := range r.members {
		if m.Username == username {
			return true
		}
	}
	return false
}

// uniqueUsername assigns the requested name verbatim when free, otherwise
// tries numeric suffixes 1..99 in order, skipping candidates that fail
// validation. Returns "" when every candidate is taken or invalid.
func (r *Room) uniqueUsername(requested domain.Username) domain.Username {
	if !r.usernameTaken(requested) {
		return requested
	}
	for i := 1; i < 100; i++ {
		candidate, err := domain.ParseUsername(string(requested) + strconv.Itoa(i))
		if err != nil {
			continue
		}
		if !r.usernameTaken(candidate) {
			return candidate
		}
	}
	return ""
}

// AddMember registers a new member and broadcasts member_joined. On
// ErrUsernameTaken no member is inserted and the room is unchanged.
func (r *Room) AddMember(requested domain.Username, online bool) (domain.Username, string, error) {
	username := r.uniqueUsername(requested)
	if username == "" {
		return "", "", ErrUsernameTaken
	}
	member := domain.NewMember(username, online)
	r.members[member.Token] = member
	r.order = append(r.order, member.Token)
	r.hub.Publish(Event{Msg: protocol.NewMemberJoined(username)})
	r.touch()
	log.Info().Str("module", "core.room").Str("room_id", string(r.id)).Str("username", string(username)).Msg("member added")
	return username, member.Token, nil
}

// LoginMember resumes an offline member by token.
func (r *Room) LoginMember(token string) (domain.Username, error) {
	member, ok := r.members[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	if member.Online {
		return "", ErrTokenAlreadyInUse
	}
	member.SetOnline(true)
	r.hub.Publish(Event{Msg: protocol.NewMemberJoined(member.Username)})
	r.touch()
	log.Info().Str("module", "core.room").Str("room_id", string(r.id)).Str("username", string(member.Username)).Msg("member logged in")
	return member.Username, nil
}

// ForceLogout flips an online member offline and publishes a targeted kick
// followed by member_left. The returned ack resolves only once the evicted
// session has quiesced (or immediately if no live session holds the token).
// Returns nil for unknown or already-offline tokens.
func (r *Room) ForceLogout(token string) *Ack {
	member, ok := r.members[token]
	if !ok || !member.Online {
		return nil
	}
	member.SetOnline(false)
	ack := newAck()
	r.hub.Publish(Event{Kick: &Kick{Token: token, Ack: ack}})
	r.hub.Publish(Event{Msg: protocol.NewMemberLeft(member.Username)})
	r.touch()
	log.Info().Str("module", "core.room").Str("room_id", string(r.id)).Str("username", string(member.Username)).Msg("member force-logged out")
	return ack
}

// OnDisconnect flips the member offline and broadcasts member_left.
// Idempotent: unknown or already-offline tokens are a no-op.
func (r *Room) OnDisconnect(token string) {
	member, ok := r.members[token]
	if !ok || !member.Online {
		return
	}
	member.SetOnline(false)
	r.hub.Publish(Event{Msg: protocol.NewMemberLeft(member.Username)})
	r.touch()
	log.Info().Str("module", "core.room").Str("room_id", string(r.id)).Str("username", string(member.Username)).Msg("member left")
}

// Subscribe attaches a session to the broadcast stream. Taking the
// subscription under the same registry lock as the join mutation makes the
// member-list snapshot and the stream gap-free.
func (r *Room) Subscribe(token string, username domain.Username) *Subscription {
	return r.hub.Subscribe(token, username)
}

// MemberList snapshots the membership in insertion order.
func (r *Room) MemberList() []domain.MemberInfo {
	out := make([]domain.MemberInfo, 0, len(r.order))
	for _, token := range r.order {
		out = append(out, r.members[token].Info())
	}
	return out
}
