// Package sign sequences the two-round FROST signing protocol between a
// coordinator and its chosen signers. The cryptographic contracts live in
// pkg/frost/sign; this package owns the per-attempt state machines.
package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumsig/frost/pkg/frost"
	frostsign "github.com/quorumsig/frost/pkg/frost/sign"
	"github.com/quorumsig/frost/pkg/party"
)

// CoordinatorState names the stages of one signing attempt as seen by the
// coordinator. A failed attempt does not repair: a new attempt starts
// fresh with new nonces.
type CoordinatorState int

const (
	// StateFresh is the initial state, collecting round 1 commitments.
	StateFresh CoordinatorState = iota
	// StateCommitmentsCollected means all chosen signers have committed.
	StateCommitmentsCollected
	// StatePackageIssued means the signing package is frozen and
	// distributed, and round 2 shares are being collected.
	StatePackageIssued
	// StateSharesCollected means all shares have arrived.
	StateSharesCollected
	// StateAggregated is the terminal success state.
	StateAggregated
	// StateFailed is the terminal failure state.
	StateFailed
)

// Coordinator drives one signing attempt. It is not safe for concurrent
// use; an attempt is a single logical task.
type Coordinator struct {
	suite            frost.Suite
	publicKeyPackage *frost.PublicKeyPackage
	signers          party.IDSlice
	message          []byte

	state       CoordinatorState
	commitments map[party.ID]*frostsign.SigningCommitments
	pkg         *frostsign.SigningPackage
	shares      map[party.ID]*frostsign.SignatureShare
	randomizer  *frost.Randomizer
}

// NewCoordinator starts a signing attempt for message among the given
// signers, which must be members of the group and at least MinSigners
// many.
func NewCoordinator(publicKeyPackage *frost.PublicKeyPackage, signers []party.ID, message []byte) (*Coordinator, error) {
	sorted := party.NewIDSlice(signers)
	if !sorted.Valid() {
		return nil, fmt.Errorf("sign: invalid signer set: %w", frost.ErrInvalidArgument)
	}
	if len(sorted) < int(publicKeyPackage.MinSigners) {
		return nil, fmt.Errorf("sign: %d signers below threshold %d: %w",
			len(sorted), publicKeyPackage.MinSigners, frost.ErrInvalidArgument)
	}
	for _, id := range sorted {
		if _, ok := publicKeyPackage.VerifyingShares[id]; !ok {
			return nil, fmt.Errorf("sign: %s: %w", id, frost.ErrUnknownIdentifier)
		}
	}
	return &Coordinator{
		suite:            publicKeyPackage.Suite,
		publicKeyPackage: publicKeyPackage,
		signers:          sorted,
		message:          message,
		commitments:      make(map[party.ID]*frostsign.SigningCommitments, len(sorted)),
		shares:           make(map[party.ID]*frostsign.SignatureShare, len(sorted)),
	}, nil
}

// State returns the current stage of the attempt.
func (c *Coordinator) State() CoordinatorState { return c.state }

// Signers returns the chosen signer set.
func (c *Coordinator) Signers() party.IDSlice { return c.signers }

// AddCommitments records one signer's round 1 commitments. It returns true
// once all signers have committed.
func (c *Coordinator) AddCommitments(id party.ID, commitments *frostsign.SigningCommitments) (bool, error) {
	if c.state != StateFresh {
		return false, fmt.Errorf("sign: commitments after package was issued: %w", frost.ErrInvalidArgument)
	}
	if !c.signers.Contains(id) {
		return false, fmt.Errorf("sign: %s is not a chosen signer: %w", id, frost.ErrUnknownIdentifier)
	}
	if _, ok := c.commitments[id]; ok {
		return false, fmt.Errorf("sign: %s: %w", id, frost.ErrDuplicateIdentifier)
	}
	c.commitments[id] = commitments
	if len(c.commitments) == len(c.signers) {
		c.state = StateCommitmentsCollected
	}
	return c.state == StateCommitmentsCollected, nil
}

// SigningPackage freezes and returns the signing package; later calls
// return the same package. It derives no randomizer: for rerandomized
// suites, Randomizer derives one from the frozen package.
func (c *Coordinator) SigningPackage() (*frostsign.SigningPackage, error) {
	switch c.state {
	case StateCommitmentsCollected:
	case StatePackageIssued:
		return c.pkg, nil
	default:
		return nil, fmt.Errorf("sign: commitments not yet collected: %w", frost.ErrInvalidArgument)
	}
	pkg, err := frostsign.NewSigningPackage(c.message, c.commitments)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	c.pkg = pkg
	c.state = StatePackageIssued
	return pkg, nil
}

// Randomizer returns the attempt's randomizer, deriving one on first use.
// It fails for suites without rerandomization support.
func (c *Coordinator) Randomizer() (*frost.Randomizer, error) {
	if c.randomizer != nil {
		return c.randomizer, nil
	}
	randomized, ok := c.suite.(frost.RandomizedSuite)
	if !ok {
		return nil, fmt.Errorf("sign: suite %q does not support rerandomization: %w",
			c.suite.Name(), frost.ErrInvalidArgument)
	}
	pkg, err := c.SigningPackage()
	if err != nil {
		return nil, err
	}
	c.randomizer, err = frostsign.NewRandomizer(rand.Reader, randomized, pkg)
	if err != nil {
		return nil, err
	}
	return c.randomizer, nil
}

// AddShare records one signer's round 2 share. It returns true once all
// shares have arrived.
func (c *Coordinator) AddShare(id party.ID, share *frostsign.SignatureShare) (bool, error) {
	if c.state != StatePackageIssued {
		return false, fmt.Errorf("sign: share before package was issued: %w", frost.ErrInvalidArgument)
	}
	if !c.signers.Contains(id) {
		return false, fmt.Errorf("sign: %s is not a chosen signer: %w", id, frost.ErrUnknownIdentifier)
	}
	if _, ok := c.shares[id]; ok {
		return false, fmt.Errorf("sign: %s: %w", id, frost.ErrDuplicateIdentifier)
	}
	c.shares[id] = share
	if len(c.shares) == len(c.signers) {
		c.state = StateSharesCollected
	}
	return c.state == StateSharesCollected, nil
}

// Aggregate combines the collected shares, verifies the signature and
// returns it. The attempt terminates either way.
func (c *Coordinator) Aggregate() (*frost.Signature, error) {
	if c.state != StateSharesCollected {
		return nil, fmt.Errorf("sign: shares not yet collected: %w", frost.ErrInvalidArgument)
	}
	var (
		signature *frost.Signature
		err       error
	)
	if c.randomizer != nil {
		signature, err = frostsign.AggregateRandomized(c.pkg, c.shares, c.publicKeyPackage, c.randomizer)
	} else {
		signature, err = frostsign.Aggregate(c.pkg, c.shares, c.publicKeyPackage)
	}
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	c.state = StateAggregated
	return signature, nil
}
