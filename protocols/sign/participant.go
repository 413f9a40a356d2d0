package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumsig/frost/pkg/frost"
	frostsign "github.com/quorumsig/frost/pkg/frost/sign"
)

// Participant drives one signing attempt for a single signer: commit,
// receive the signing package, emit the share. The nonce pair lives
// exactly from Commit until Sign, and is wiped when the share is emitted.
type Participant struct {
	keyPackage *frost.KeyPackage
	nonces     *frostsign.SigningNonces
	done       bool
}

// NewParticipant prepares a signing attempt with this participant's key
// package.
func NewParticipant(keyPackage *frost.KeyPackage) *Participant {
	return &Participant{keyPackage: keyPackage}
}

// Commit runs round 1 and returns the commitments to send to the
// coordinator.
func (p *Participant) Commit() (*frostsign.SigningCommitments, error) {
	if p.nonces != nil || p.done {
		return nil, frost.ErrNonceReuse
	}
	nonces, commitments, err := frostsign.Commit(p.keyPackage.Suite, p.keyPackage.SigningShare, rand.Reader)
	if err != nil {
		return nil, err
	}
	p.nonces = nonces
	return commitments, nil
}

// Sign runs round 2 against the coordinator's signing package and returns
// this participant's share. A non-nil randomizer produces a rerandomized
// share. The attempt terminates either way: a failed attempt needs a new
// Participant with fresh nonces.
func (p *Participant) Sign(pkg *frostsign.SigningPackage, randomizer *frost.Randomizer) (*frostsign.SignatureShare, error) {
	if p.nonces == nil {
		return nil, fmt.Errorf("sign: signing package before commitment: %w", frost.ErrInvalidArgument)
	}
	if p.done {
		return nil, frost.ErrNonceReuse
	}
	p.done = true
	defer p.nonces.Wipe()

	if randomizer != nil {
		return frostsign.SignRandomized(pkg, p.nonces, p.keyPackage, randomizer)
	}
	return frostsign.Sign(pkg, p.nonces, p.keyPackage)
}
