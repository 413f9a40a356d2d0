package dkg

import (
	"github.com/quorumsig/frost/internal/round"
	frostdkg "github.com/quorumsig/frost/pkg/frost/dkg"
	"github.com/quorumsig/frost/pkg/party"
)

// round1 deals this participant's polynomial and broadcasts the commitment
// with its proof of knowledge.
type round1 struct {
	*round.Helper
	threshold uint16
}

func (r *round1) VerifyMessage(round.Message) error { return nil }
func (r *round1) StoreMessage(round.Message) error  { return nil }

func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	secret, public, err := frostdkg.Part1(r.Suite(), r.SelfID(), r.threshold, uint16(r.N()))
	if err != nil {
		return r.AbortRound(err), nil
	}
	if err := r.BroadcastMessage(out, &broadcast2{Package: public}); err != nil {
		return r, err
	}
	return &round2{
		round1:   r,
		secret:   secret,
		packages: map[party.ID]*frostdkg.Round1Package{},
	}, nil
}

func (round1) MessageContent() round.Content { return nil }

func (round1) Number() round.Number { return 1 }
