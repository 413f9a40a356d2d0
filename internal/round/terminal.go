package round

import (
	"errors"

	"github.com/quorumsig/frost/pkg/party"
)

// Output and Abort are the two terminal states of a protocol execution.
// Both accept no further messages and report round number 0; the handler
// recognizes them by type when a Finalize returns one.

// Output holds the protocol result.
type Output struct {
	*Helper
	Result interface{}
}

// Abort holds the failure, together with the misbehaving parties when the
// protocol was able to identify them.
type Abort struct {
	*Helper
	Culprits []party.ID
	Err      error
}

func (*Output) VerifyMessage(Message) error { return nil }
func (*Output) StoreMessage(Message) error  { return nil }
func (*Output) MessageContent() Content     { return nil }
func (*Output) Number() Number              { return 0 }

func (r *Output) Finalize(chan<- *Message) (Session, error) {
	return r, errors.New("round: protocol already produced its output")
}

func (*Abort) VerifyMessage(Message) error { return nil }
func (*Abort) StoreMessage(Message) error  { return nil }
func (*Abort) MessageContent() Content     { return nil }
func (*Abort) Number() Number              { return 0 }

func (r *Abort) Finalize(chan<- *Message) (Session, error) {
	return r, nil
}
