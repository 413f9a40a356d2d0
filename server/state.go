package server

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTimeout is how long a session survives without activity
// before the eviction timer removes it.
const DefaultSessionTimeout = 10 * time.Minute

// challengeTTL bounds how long a login challenge stays valid.
const challengeTTL = 2 * time.Minute

// MaxMsgSize bounds the size of a single relayed message.
const MaxMsgSize = 1 << 20

// Session is one rendezvous between a coordinator and its participants.
// Membership is immutable; queues hold opaque Noise ciphertexts only.
type Session struct {
	mtx sync.Mutex

	ID                uuid.UUID
	CoordinatorPubKey string
	// Members maps pubkey (hex) to membership; the coordinator is always
	// a member.
	Members      map[string]bool
	MemberOrder  []string
	MessageCount uint8
	// Queues maps recipient pubkey (hex) to its FIFO inbox.
	Queues       map[string][]Msg
	LastActivity time.Time
}

type challenge struct {
	pubkey  string
	expires time.Time
}

// State is the process-wide server state: sessions, login challenges and
// bearer tokens. All sessions are in-memory and lost on restart.
type State struct {
	mtx sync.RWMutex

	sessions         map[uuid.UUID]*Session
	sessionsByPubkey map[string]map[uuid.UUID]bool
	challenges       map[string]challenge
	accessTokens     map[uuid.UUID]string

	sessionTimeout time.Duration
	now            func() time.Time
	rand           io.Reader
}

// NewState creates empty server state with the given idle-session timeout;
// zero means DefaultSessionTimeout.
func NewState(sessionTimeout time.Duration) *State {
	if sessionTimeout == 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	return &State{
		sessions:         make(map[uuid.UUID]*Session),
		sessionsByPubkey: make(map[string]map[uuid.UUID]bool),
		challenges:       make(map[string]challenge),
		accessTokens:     make(map[uuid.UUID]string),
		sessionTimeout:   sessionTimeout,
		now:              time.Now,
		rand:             rand.Reader,
	}
}

// NewChallenge issues a fresh 32-byte login challenge bound to the pubkey.
func (s *State) NewChallenge(pubkey string) ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return nil, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.challenges[string(buf)] = challenge{pubkey: pubkey, expires: s.now().Add(challengeTTL)}
	return buf, nil
}

// TakeChallenge consumes a challenge, returning false if it is unknown,
// expired, or was issued to a different pubkey.
func (s *State) TakeChallenge(raw []byte, pubkey string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	c, ok := s.challenges[string(raw)]
	if !ok {
		return false
	}
	delete(s.challenges, string(raw))
	return c.pubkey == pubkey && s.now().Before(c.expires)
}

// NewAccessToken mints a bearer token for the authenticated pubkey.
func (s *State) NewAccessToken(pubkey string) uuid.UUID {
	token := uuid.New()
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.accessTokens[token] = pubkey
	return token
}

// PubKeyForToken resolves a bearer token to its account pubkey.
func (s *State) PubKeyForToken(token uuid.UUID) (string, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	pubkey, ok := s.accessTokens[token]
	return pubkey, ok
}

// DropToken invalidates a bearer token.
func (s *State) DropToken(token uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.accessTokens, token)
}

// CreateSession registers a new session owned by the coordinator.
func (s *State) CreateSession(coordinator string, members []string, messageCount uint8) *Session {
	session := &Session{
		ID:                uuid.New(),
		CoordinatorPubKey: coordinator,
		Members:           make(map[string]bool, len(members)+1),
		MessageCount:      messageCount,
		Queues:            make(map[string][]Msg),
		LastActivity:      s.now(),
	}
	for _, m := range members {
		if !session.Members[m] {
			session.Members[m] = true
			session.MemberOrder = append(session.MemberOrder, m)
		}
	}
	session.Members[coordinator] = true

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.sessions[session.ID] = session
	for member := range session.Members {
		if s.sessionsByPubkey[member] == nil {
			s.sessionsByPubkey[member] = make(map[uuid.UUID]bool)
		}
		s.sessionsByPubkey[member][session.ID] = true
	}
	return session
}

// Session looks up a session by id.
func (s *State) Session(id uuid.UUID) (*Session, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// SessionsFor lists the ids of all sessions the pubkey belongs to.
func (s *State) SessionsFor(pubkey string) []uuid.UUID {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.sessionsByPubkey[pubkey]))
	for id := range s.sessionsByPubkey[pubkey] {
		ids = append(ids, id)
	}
	return ids
}

// RemoveSession deletes a session and all its queues.
func (s *State) RemoveSession(id uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.removeSessionLocked(id)
}

func (s *State) removeSessionLocked(id uuid.UUID) {
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	for member := range session.Members {
		delete(s.sessionsByPubkey[member], id)
		if len(s.sessionsByPubkey[member]) == 0 {
			delete(s.sessionsByPubkey, member)
		}
	}
	delete(s.sessions, id)
}

// EvictIdle removes sessions idle for longer than the timeout, and expired
// challenges. It returns the number of evicted sessions.
func (s *State) EvictIdle() int {
	now := s.now()
	s.mtx.Lock()
	defer s.mtx.Unlock()
	evicted := 0
	for id, session := range s.sessions {
		session.mtx.Lock()
		idle := now.Sub(session.LastActivity) > s.sessionTimeout
		session.mtx.Unlock()
		if idle {
			s.removeSessionLocked(id)
			evicted++
		}
	}
	for raw, c := range s.challenges {
		if now.After(c.expires) {
			delete(s.challenges, raw)
		}
	}
	return evicted
}

// IsMember reports whether pubkey belongs to the session.
func (session *Session) IsMember(pubkey string) bool {
	return session.Members[pubkey]
}

// Enqueue appends one copy of msg to every recipient queue, atomically
// with respect to other operations on this session. Recipients are keyed
// by their hex-encoded pubkey; the sender travels as raw bytes.
func (session *Session) Enqueue(now time.Time, sender HexBytes, recipients []string, msg []byte) {
	session.mtx.Lock()
	defer session.mtx.Unlock()
	for _, recipient := range recipients {
		session.Queues[recipient] = append(session.Queues[recipient], Msg{
			Sender: append(HexBytes{}, sender...),
			Msg:    append(HexBytes{}, msg...),
		})
	}
	session.LastActivity = now
}

// Drain removes and returns the recipient's queue contents in arrival
// order.
func (session *Session) Drain(now time.Time, recipient string) []Msg {
	session.mtx.Lock()
	defer session.mtx.Unlock()
	msgs := session.Queues[recipient]
	if len(msgs) == 0 {
		return nil
	}
	delete(session.Queues, recipient)
	session.LastActivity = now
	return msgs
}
