package dkg

import (
	"errors"

	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/frost"
	frostdkg "github.com/quorumsig/frost/pkg/frost/dkg"
	"github.com/quorumsig/frost/pkg/party"
)

// round3 collects the pairwise shares and derives the key material.
type round3 struct {
	*round2
	secret    *frostdkg.Round2SecretPackage
	shareFrom map[party.ID]*frostdkg.Round2Package
}

// message3 carries the share f_i(id_j) from dealer i to receiver j. The
// transport below this protocol must be end-to-end encrypted.
type message3 struct {
	Package *frostdkg.Round2Package
}

func (message3) RoundNumber() round.Number { return 3 }

func (r *round3) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message3)
	if !ok || body == nil || body.Package == nil || body.Package.SigningShare == nil {
		return round.ErrInvalidContent
	}
	return nil
}

func (r *round3) StoreMessage(msg round.Message) error {
	r.shareFrom[msg.From] = msg.Content.(*message3).Package
	return nil
}

func (r *round3) Finalize(chan<- *round.Message) (round.Session, error) {
	keyPackage, publicKeyPackage, err := frostdkg.Part3(r.secret, r.packages, r.shareFrom)
	if err != nil {
		return r.AbortRound(err, culpritOf(err)...), nil
	}
	return r.ResultRound(&Result{
		KeyPackage:       keyPackage,
		PublicKeyPackage: publicKeyPackage,
	}), nil
}

func (r *round3) MessageContent() round.Content { return &message3{} }

func (round3) Number() round.Number { return 3 }

// culpritOf extracts the misbehaving party from a DKG failure, when the
// error identifies one.
func culpritOf(err error) []party.ID {
	var proof *frost.InvalidProofOfKnowledgeError
	if errors.As(err, &proof) {
		return []party.ID{proof.Culprit}
	}
	var share *frost.InvalidShareError
	if errors.As(err, &share) {
		return []party.ID{share.Culprit}
	}
	return nil
}
