// Package protocol drives a round-based protocol execution: it feeds
// incoming messages to the current round, advances once the round's
// message set is complete, and surfaces the result or the failure.
package protocol

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/rs/zerolog"
)

// StartFunc creates the first round of a protocol along with its session
// state.
type StartFunc func() (round.Session, error)

// Error wraps a round failure with the round it occurred in and the party
// that caused it, when known.
type Error struct {
	RoundNumber round.Number
	Culprit     party.ID
	Err         error
}

func (e Error) Error() string {
	if e.Culprit != 0 {
		return fmt.Sprintf("protocol: round %d: party %s: %v", e.RoundNumber, e.Culprit, e.Err)
	}
	return fmt.Sprintf("protocol: round %d: %v", e.RoundNumber, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// Handler represents an execution of a protocol for one party.
//
// All state transitions are serialized: a participant never runs two
// rounds of the same attempt concurrently.
type Handler struct {
	mtx sync.Mutex

	log zerolog.Logger

	outChan  chan *round.Message
	current  round.Session
	result   interface{}
	err      error
	received map[party.ID]bool
	queue    []*round.Message
	done     bool
}

// NewHandler starts the protocol and finalizes the first (local) round.
func NewHandler(create StartFunc) (*Handler, error) {
	r, err := create()
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	h := &Handler{
		outChan: make(chan *round.Message, 2*r.N()),
		current: r,
	}
	h.log = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().
		Str("protocol", r.ProtocolID()).
		Str("party", r.SelfID().String()).
		Logger()
	h.resetReceived()

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if err := h.finishRound(); err != nil {
		return nil, err
	}
	return h, nil
}

// SetLogger replaces the handler's logger.
func (h *Handler) SetLogger(log zerolog.Logger) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.log = log
}

// Listen returns the channel of outgoing messages. It is closed when the
// protocol completes or fails.
func (h *Handler) Listen() <-chan *round.Message {
	return h.outChan
}

// Result returns the protocol output once available.
func (h *Handler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, errors.New("protocol: not finished")
}

// Done reports whether the protocol has completed, successfully or not.
func (h *Handler) Done() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.done
}

// Update processes one incoming message. Messages for future rounds are
// queued; duplicates and messages from unknown senders are rejected.
// Partial message sets leave the round state unchanged.
func (h *Handler) Update(msg *round.Message) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.result != nil || h.err != nil {
		return h.err
	}

	if msg != nil {
		if err := h.validate(msg); err != nil {
			h.log.Warn().Err(err).Str("from", msg.From.String()).Msg("rejected message")
			return err
		}
		if err := h.handleMessage(msg); err != nil {
			return err
		}
	}

	if h.receivedAll() {
		if err := h.finishRound(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) validate(msg *round.Message) error {
	if msg.Content == nil {
		return errors.New("protocol: message without content")
	}
	if !h.current.PartyIDs().Contains(msg.From) {
		return fmt.Errorf("protocol: unknown sender %s", msg.From)
	}
	if msg.From == h.current.SelfID() {
		return errors.New("protocol: message from self")
	}
	if !msg.Broadcast && msg.To != h.current.SelfID() {
		return fmt.Errorf("protocol: message addressed to %s", msg.To)
	}
	if msg.Content.RoundNumber() < h.roundNumber() {
		return fmt.Errorf("protocol: duplicate message for past round %d", msg.Content.RoundNumber())
	}
	if msg.Content.RoundNumber() > h.current.FinalRoundNumber() {
		return fmt.Errorf("protocol: message for invalid round %d", msg.Content.RoundNumber())
	}
	return nil
}

func (h *Handler) handleMessage(msg *round.Message) error {
	if msg.Content.RoundNumber() != h.roundNumber() {
		h.queue = append(h.queue, msg)
		return nil
	}
	if h.received[msg.From] {
		return fmt.Errorf("protocol: duplicate message from %s", msg.From)
	}
	if err := h.current.VerifyMessage(*msg); err != nil {
		return h.abort(err, msg.From)
	}
	if err := h.current.StoreMessage(*msg); err != nil {
		return h.abort(err, msg.From)
	}
	h.received[msg.From] = true
	return nil
}

func (h *Handler) finishRound() error {
	next, err := h.current.Finalize(h.outChan)
	if err != nil {
		return h.abort(err, 0)
	}

	switch terminal := next.(type) {
	case *round.Output:
		h.result = terminal.Result
		h.stop()
		return nil
	case *round.Abort:
		culprit := party.ID(0)
		if len(terminal.Culprits) > 0 {
			culprit = terminal.Culprits[0]
		}
		return h.abort(terminal.Err, culprit)
	}

	h.current = next
	h.log.Debug().Uint16("round", uint16(h.roundNumber())).Msg("round advanced")
	h.resetReceived()

	// replay queued messages intended for the new round
	pending := h.queue
	h.queue = nil
	for _, msg := range pending {
		if err := h.handleMessage(msg); err != nil {
			return err
		}
	}
	if h.receivedAll() {
		return h.finishRound()
	}
	return nil
}

func (h *Handler) resetReceived() {
	received := make(map[party.ID]bool)
	for _, id := range h.current.OtherPartyIDs() {
		received[id] = false
	}
	// rounds without incoming messages finalize immediately
	if h.current.MessageContent() == nil {
		for id := range received {
			received[id] = true
		}
	}
	h.received = received
}

func (h *Handler) receivedAll() bool {
	for _, ok := range h.received {
		if !ok {
			return false
		}
	}
	return true
}

func (h *Handler) abort(err error, culprit party.ID) error {
	wrapped := Error{RoundNumber: h.roundNumber(), Culprit: culprit, Err: err}
	if h.err == nil {
		h.err = wrapped
	}
	h.log.Error().Err(err).Str("culprit", culprit.String()).Msg("protocol aborted")
	h.stop()
	return wrapped
}

func (h *Handler) roundNumber() round.Number {
	return h.current.Number()
}

func (h *Handler) stop() {
	if !h.done {
		h.done = true
		close(h.outChan)
	}
}
