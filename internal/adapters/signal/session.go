package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/config"
	"github.com/dkeye/Gather/internal/core"
	"github.com/dkeye/Gather/internal/domain"
	"github.com/dkeye/Gather/internal/protocol"
)

const writeTimeout = 5 * time.Second

// session is one live connection: AwaitingJoin -> Active -> Terminated.
// All writes to the transport happen on the session goroutine.
type session struct {
	reg    *core.Registry
	roomID domain.RoomID
	conn   *websocket.Conn
	cfg    *config.Config

	done chan struct{} // closed on teardown; stops the read loop

	token    string
	username domain.Username
	isOwner  bool
	sub      *core.Subscription
	members  []domain.MemberInfo

	// held when this session was itself evicted; released during teardown,
	// after the disconnect cleanup, so the evictor resumes only once this
	// session has provably quiesced
	evictAck *core.Ack
}

func newSession(reg *core.Registry, roomID domain.RoomID, conn *websocket.Conn, cfg *config.Config) *session {
	return &session{
		reg:    reg,
		roomID: roomID,
		conn:   conn,
		cfg:    cfg,
		done:   make(chan struct{}),
	}
}

func (s *session) run(ctx context.Context) {
	defer s.teardown()

	if !s.reg.Contains(s.roomID) {
		s.sendError(protocol.KindRoomNotFound, "")
		return
	}

	s.conn.SetReadLimit(s.cfg.ReadLimit)

	inbound := make(chan []byte, 16)
	go s.readLoop(inbound)

	if !s.handshake(ctx, inbound) {
		return
	}
	log.Info().Str("module", "signal").Str("room_id", string(s.roomID)).Str("username", string(s.username)).Msg("user joined room")

	s.eventLoop(ctx, inbound)
}

// teardown runs on every exit path. Order matters: the transport stops
// first, then the membership flip, then the eviction ack release, then the
// unsubscribe (which drains and releases any unconsumed acks).
func (s *session) teardown() {
	close(s.done)
	_ = s.conn.Close()
	if s.sub == nil {
		return // handshake never completed
	}
	_ = s.reg.WithRoom(s.roomID, func(room *core.Room) error {
		room.OnDisconnect(s.token)
		return nil
	})
	if s.evictAck != nil {
		s.evictAck.Release()
	}
	s.sub.Close()
}

// readLoop feeds inbound text frames to the session goroutine. Binary
// frames and read errors (including frames over the read limit) end the
// stream; gorilla answers ping frames internally.
func (s *session) readLoop(inbound chan<- []byte) {
	defer close(inbound)
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			log.Warn().Str("module", "signal").Str("room_id", string(s.roomID)).Msg("unexpected binary frame, disconnecting")
			return
		}
		select {
		case inbound <- data:
		case <-s.done:
			return
		}
	}
}

// handshake waits for a single join message under an absolute deadline.
// Non-join messages are ignored; malformed JSON terminates.
func (s *session) handshake(ctx context.Context, inbound <-chan []byte) bool {
	deadline := time.NewTimer(s.cfg.JoinTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			log.Warn().Str("module", "signal").Str("room_id", string(s.roomID)).Msg("join timeout exceeded")
			s.sendError(protocol.KindJoinTimeout, "")
			return false
		case data, ok := <-inbound:
			if !ok {
				return false
			}
			var msg protocol.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("bad handshake payload")
				return false
			}
			if msg.Type != protocol.TypeJoin {
				continue
			}
			switch msg.Kind {
			case protocol.JoinWithUsername:
				return s.joinWithCredentials(msg)
			case protocol.JoinWithToken:
				return s.joinWithToken(ctx, msg.Token, deadline.C)
			default:
				s.sendError(protocol.KindOther, "unknown join kind")
				return false
			}
		}
	}
}

// joinWithCredentials validates the username and password, then registers a
// new online member. Any failure leaves membership unchanged and sends one
// structured error.
func (s *session) joinWithCredentials(msg protocol.ClientMessage) bool {
	username, err := domain.ParseUsername(msg.Username)
	if err != nil {
		s.sendError(protocol.KindInvalidUsername, err.Error())
		return false
	}
	var password *domain.Password
	if msg.Password != nil {
		p, err := domain.ParsePassword(*msg.Password)
		if err != nil {
			s.sendError(protocol.KindOther, err.Error())
			return false
		}
		password = &p
	}

	err = s.reg.WithRoom(s.roomID, func(room *core.Room) error {
		if err := room.VerifyPassword(password); err != nil {
			return err
		}
		assigned, token, err := room.AddMember(username, true)
		if err != nil {
			return err
		}
		s.attach(room, assigned, token)
		return nil
	})
	if err != nil {
		kind, message := core.ErrorKindOf(err)
		s.sendError(kind, message)
		return false
	}
	return s.sendWelcome()
}

// joinWithToken resumes a member. A token already online triggers the
// eviction protocol: force-logout the holder, suspend until its session has
// fully terminated, then retry the login exactly once.
func (s *session) joinWithToken(ctx context.Context, token string, deadline <-chan time.Time) bool {
	for attempt := 0; attempt < 2; attempt++ {
		var evict *core.Ack
		err := s.reg.WithRoom(s.roomID, func(room *core.Room) error {
			username, err := room.LoginMember(token)
			if err != nil {
				if errors.Is(err, core.ErrTokenAlreadyInUse) && attempt == 0 {
					evict = room.ForceLogout(token)
				}
				return err
			}
			s.attach(room, username, token)
			return nil
		})
		if err == nil {
			return s.sendWelcome()
		}
		if evict != nil {
			log.Info().Str("module", "signal").Str("room_id", string(s.roomID)).Msg("token in use, waiting for old session to terminate")
			select {
			case <-evict.Done():
				continue
			case <-deadline:
				s.sendError(protocol.KindJoinTimeout, "")
				return false
			case <-ctx.Done():
				return false
			}
		}
		kind, message := core.ErrorKindOf(err)
		s.sendError(kind, message)
		return false
	}
	return false
}

// attach records the session identity and subscribes to the room stream.
// Runs under the registry write lock so the member-list snapshot and the
// subscription are gap-free.
func (s *session) attach(room *core.Room, username domain.Username, token string) {
	s.username = username
	s.token = token
	s.isOwner = room.IsOwner(token)
	s.sub = room.Subscribe(token, username)
	s.members = room.MemberList()
}

// sendWelcome emits joined_as then member_list, strictly in that order and
// before any broadcast event is forwarded.
func (s *session) sendWelcome() bool {
	if !s.sendJSON(protocol.NewJoinedAs(s.username, s.token, s.isOwner)) {
		return false
	}
	return s.sendJSON(protocol.NewMemberList(s.members))
}

// eventLoop merges the room stream and inbound frames, reacting to room
// events first whenever both are ready (eviction correctness depends on
// this priority).
func (s *session) eventLoop(ctx context.Context, inbound <-chan []byte) {
	for {
		select {
		case ev, ok := <-s.sub.C():
			if !s.handleEvent(ev, ok) {
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sub.C():
			if !s.handleEvent(ev, ok) {
				return
			}
		case data, ok := <-inbound:
			if !ok {
				return
			}
			s.handleClientMessage(data)
		}
	}
}

func (s *session) handleEvent(ev core.Event, ok bool) bool {
	if !ok {
		if errors.Is(s.sub.Err(), core.ErrSlowConsumer) {
			log.Warn().Str("module", "signal").Str("room_id", string(s.roomID)).Str("username", string(s.username)).Msg("subscriber lagged, disconnecting")
		}
		return false
	}
	if ev.Kick != nil {
		if ev.Kick.Token != s.token {
			ev.Kick.Ack.Release()
			return true
		}
		log.Info().Str("module", "signal").Str("room_id", string(s.roomID)).Str("username", string(s.username)).Msg("session evicted by reconnect")
		s.evictAck = ev.Kick.Ack
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
		return false
	}
	// the server must not echo a member's own join back to them
	if joined, isJoin := ev.Msg.(protocol.MemberJoined); isJoin && joined.Username == s.username {
		return true
	}
	return s.sendJSON(ev.Msg)
}

func (s *session) handleClientMessage(data []byte) {
	var msg protocol.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}
	switch msg.Type {
	case protocol.TypeChatMessage:
		s.publish(core.Event{Msg: protocol.NewChat(s.username, msg.Message)})
	case protocol.TypeOffer:
		s.forwardSignaling(msg.To, protocol.SignalingPayload{Kind: protocol.SignalOffer, SDP: msg.SDP})
	case protocol.TypeAnswer:
		s.forwardSignaling(msg.To, protocol.SignalingPayload{Kind: protocol.SignalAnswer, SDP: msg.SDP})
	case protocol.TypeIceCandidate:
		s.forwardSignaling(msg.To, protocol.SignalingPayload{Kind: protocol.SignalIceCandidate, Candidate: msg.Candidate})
	case protocol.TypeLeave:
		// closing the transport is equivalent
	default:
		// ignore other client message types
	}
}

// forwardSignaling delivers the payload only to the session currently
// representing the recipient. Unknown recipients are dropped silently: the
// sender has no actionable recovery.
func (s *session) forwardSignaling(to string, payload protocol.SignalingPayload) {
	s.publish(core.Event{
		To:  domain.Username(to),
		Msg: protocol.NewSignalingMessage(s.username, payload),
	})
}

// publish pushes an event through the room hub. A room deleted since the
// join simply drops the event.
func (s *session) publish(ev core.Event) {
	hub, ok := s.reg.Hub(s.roomID)
	if !ok {
		return
	}
	hub.Publish(ev)
}

func (s *session) sendJSON(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal server message")
		return true
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return false
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room_id", string(s.roomID)).Msg("write error")
		return false
	}
	return true
}

func (s *session) sendError(kind protocol.ErrorKind, message string) {
	_ = s.sendJSON(protocol.NewError(kind, message))
}
