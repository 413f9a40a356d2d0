package round

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/quorumsig/frost/internal/hash"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
)

// ErrOutChanFull is returned when the outgoing message channel cannot
// accept another message; it indicates a misconfigured buffer size.
var ErrOutChanFull = errors.New("round: out channel is full")

// Info is the static configuration of a protocol execution.
type Info struct {
	// ProtocolID identifies the protocol.
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber Number
	// SelfID is this party's ID.
	SelfID party.ID
	// PartyIDs are all participating parties, in any order.
	PartyIDs []party.ID
	// Threshold is the minimum number of signers t of the group.
	Threshold uint16
	// Suite is the ciphersuite used for this protocol execution.
	Suite frost.Suite
}

// Session is the full state of a protocol execution: the current round
// plus the static session information.
type Session interface {
	Round
	ProtocolID() string
	FinalRoundNumber() Number
	// SSID is the unique identifier of this protocol execution, derived
	// from all session parameters.
	SSID() []byte
	SelfID() party.ID
	PartyIDs() party.IDSlice
	OtherPartyIDs() party.IDSlice
	Threshold() uint16
	N() int
	Suite() frost.Suite
}

// Helper implements Session without Round, so the first round of a
// protocol embeds it to satisfy the full interface.
type Helper struct {
	info Info

	partyIDs      party.IDSlice
	otherPartyIDs party.IDSlice
	ssid          []byte
	hash          *hash.Hash
	mtx           sync.Mutex
}

// NewSession validates the session parameters and binds them all into the
// transcript hash whose digest becomes the SSID.
func NewSession(info Info, sessionID []byte) (*Helper, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	if !partyIDs.Valid() {
		return nil, errors.New("session: partyIDs invalid")
	}
	if !partyIDs.Contains(info.SelfID) {
		return nil, errors.New("session: selfID not included in partyIDs")
	}
	if int(info.Threshold) > len(partyIDs) {
		return nil, fmt.Errorf("session: threshold %d is invalid for %d parties", info.Threshold, len(partyIDs))
	}

	h := hash.New()
	if sessionID != nil {
		_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Session ID", Bytes: sessionID})
	}
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(info.ProtocolID)})
	if info.Suite != nil {
		_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Ciphersuite", Bytes: []byte(info.Suite.Name())})
	}
	_ = h.WriteAny(partyIDs)
	threshold := make([]byte, 2)
	binary.BigEndian.PutUint16(threshold, info.Threshold)
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Threshold", Bytes: threshold})

	return &Helper{
		info:          info,
		partyIDs:      partyIDs,
		otherPartyIDs: partyIDs.Remove(info.SelfID),
		ssid:          h.Clone().Sum(),
		hash:          h,
	}, nil
}

// HashForID returns a clone of the transcript hash, keyed with the given
// party; the zero ID leaves the clone unkeyed.
func (h *Helper) HashForID(id party.ID) *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	cloned := h.hash.Clone()
	if id != 0 {
		_ = cloned.WriteAny(id)
	}
	return cloned
}

// BroadcastMessage sends content to all other participants.
func (h *Helper) BroadcastMessage(out chan<- *Message, broadcastContent Content) error {
	msg := &Message{From: h.info.SelfID, Broadcast: true, Content: broadcastContent}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// SendMessage sends content to a single party.
func (h *Helper) SendMessage(out chan<- *Message, content Content, to party.ID) error {
	msg := &Message{From: h.info.SelfID, To: to, Content: content}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// ResultRound wraps the protocol result in a terminal round.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{Helper: h, Result: result}
}

// AbortRound wraps a protocol failure and its culprits in a terminal round.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{Helper: h, Culprits: culprits, Err: err}
}

func (h *Helper) ProtocolID() string            { return h.info.ProtocolID }
func (h *Helper) FinalRoundNumber() Number      { return h.info.FinalRoundNumber }
func (h *Helper) SSID() []byte                  { return h.ssid }
func (h *Helper) SelfID() party.ID              { return h.info.SelfID }
func (h *Helper) PartyIDs() party.IDSlice       { return h.partyIDs }
func (h *Helper) OtherPartyIDs() party.IDSlice  { return h.otherPartyIDs }
func (h *Helper) Threshold() uint16             { return h.info.Threshold }
func (h *Helper) N() int                        { return len(h.partyIDs) }
func (h *Helper) Suite() frost.Suite            { return h.info.Suite }
