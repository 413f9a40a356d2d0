package dkg

import (
	"github.com/quorumsig/frost/internal/round"
	frostdkg "github.com/quorumsig/frost/pkg/frost/dkg"
	"github.com/quorumsig/frost/pkg/party"
)

// round2 collects every peer's broadcast, then deals one share to each of
// them.
type round2 struct {
	*round1
	secret   *frostdkg.Round1SecretPackage
	packages map[party.ID]*frostdkg.Round1Package
}

// broadcast2 carries a participant's commitment and proof of knowledge.
type broadcast2 struct {
	Package *frostdkg.Round1Package
}

func (broadcast2) RoundNumber() round.Number { return 2 }

func (r *round2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil || body.Package == nil {
		return round.ErrInvalidContent
	}
	return nil
}

func (r *round2) StoreMessage(msg round.Message) error {
	r.packages[msg.From] = msg.Content.(*broadcast2).Package
	return nil
}

func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	secret, shares, err := frostdkg.Part2(r.secret, r.packages)
	if err != nil {
		return r.AbortRound(err, culpritOf(err)...), nil
	}
	for id, pkg := range shares {
		if err := r.SendMessage(out, &message3{Package: pkg}, id); err != nil {
			return r, err
		}
	}
	return &round3{
		round2:    r,
		secret:    secret,
		shareFrom: map[party.ID]*frostdkg.Round2Package{},
	}, nil
}

func (r *round2) MessageContent() round.Content { return &broadcast2{} }

func (round2) Number() round.Number { return 2 }
