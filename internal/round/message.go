package round

import (
	"errors"

	"github.com/quorumsig/frost/pkg/party"
)

// ErrInvalidContent is returned when a message's content cannot be cast to
// the type the current round expects.
var ErrInvalidContent = errors.New("round: message content has wrong type")

// Number indexes the rounds of a protocol, starting at 1. Terminal rounds
// (Output, Abort) report 0.
type Number uint16

// Content represents a round's message payload, either broadcast or
// point-to-point.
type Content interface {
	RoundNumber() Number
}

// Message is a protocol message between two parties. An empty To together
// with Broadcast means the message is for every other participant.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}
