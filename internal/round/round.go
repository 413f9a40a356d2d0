// Package round defines the state machine interface shared by the online
// protocols: each round verifies and stores incoming messages, and
// finalizes into the next round once the message set is complete.
package round

// Round is one state of a round-based protocol.
type Round interface {
	// VerifyMessage validates an incoming message's content against the
	// protocol specification. It must not modify saved state.
	VerifyMessage(msg Message) error

	// StoreMessage is called after VerifyMessage and stores the relevant
	// fields from the content.
	StoreMessage(msg Message) error

	// Finalize is called once all messages for the current round have
	// been processed. Outgoing messages for the next round are written to
	// out, which must be buffered large enough to never block.
	//
	// On protocol completion Finalize returns an Output round; on a
	// protocol failure it returns an Abort round carrying the culprits.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized Content for this round, or
	// nil if the round expects no messages.
	MessageContent() Content

	// Number is the index of this round, starting at 1.
	Number() Number
}
