package frost

import (
	"fmt"
	"io"

	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/sample"
	"github.com/quorumsig/frost/pkg/party"
)

// Randomizer is the per-signature blinding scalar ρ of rerandomized FROST.
// The resulting signature verifies under Y + ρ·B instead of Y, unlinkably
// for anyone who does not know ρ.
type Randomizer struct {
	suite  RandomizedSuite
	scalar curve.Scalar
}

// NewRandomizer samples a uniform randomizer.
func NewRandomizer(rand io.Reader, suite RandomizedSuite) *Randomizer {
	return &Randomizer{suite: suite, scalar: sample.Scalar(rand, suite.Group())}
}

// RandomizerFromScalar wraps an existing scalar.
func RandomizerFromScalar(suite RandomizedSuite, scalar curve.Scalar) *Randomizer {
	return &Randomizer{suite: suite, scalar: suite.Group().NewScalar().Set(scalar)}
}

// Scalar returns a copy of ρ.
func (r *Randomizer) Scalar() curve.Scalar {
	return r.suite.Group().NewScalar().Set(r.scalar)
}

// Encode returns the canonical scalar encoding of ρ.
func (r *Randomizer) Encode() ([]byte, error) {
	return r.scalar.MarshalBinary()
}

// DecodeRandomizer parses a randomizer encoded for the given suite.
func DecodeRandomizer(suite RandomizedSuite, data []byte) (*Randomizer, error) {
	scalar, err := decodeScalar(suite, data)
	if err != nil {
		return nil, err
	}
	return &Randomizer{suite: suite, scalar: scalar}, nil
}

// RandomizeKey returns Y + ρ·B.
func (r *Randomizer) RandomizeKey(key *VerifyingKey) *VerifyingKey {
	return NewVerifyingKey(key.point.Add(r.scalar.ActOnBase()))
}

// RandomizeKeyPackage shifts a participant's key package by ρ.
//
// Lagrange coefficients over any signing set sum to 1, so shifting every
// share by ρ shifts the interpolated secret by exactly ρ; the verifying
// share and group key shift by ρ·B accordingly.
func (r *Randomizer) RandomizeKeyPackage(kp *KeyPackage) (*KeyPackage, error) {
	if kp.Suite.ID() != r.suite.ID() {
		return nil, fmt.Errorf("frost: randomizer for %q applied to %q keys: %w",
			r.suite.Name(), kp.Suite.Name(), ErrWrongCiphersuite)
	}
	shifted := kp.SigningShare.Scalar().Add(r.scalar)
	point := r.scalar.ActOnBase()
	return &KeyPackage{
		Suite:          kp.Suite,
		Identifier:     kp.Identifier,
		SigningShare:   NewSigningShare(shifted),
		VerifyingShare: kp.VerifyingShare.Add(point),
		VerifyingKey:   r.RandomizeKey(kp.VerifyingKey),
		MinSigners:     kp.MinSigners,
		MaxSigners:     kp.MaxSigners,
	}, nil
}

// RandomizePublicKeyPackage shifts every verifying share and the group key
// by ρ·B.
func (r *Randomizer) RandomizePublicKeyPackage(p *PublicKeyPackage) (*PublicKeyPackage, error) {
	if p.Suite.ID() != r.suite.ID() {
		return nil, fmt.Errorf("frost: randomizer for %q applied to %q keys: %w",
			r.suite.Name(), p.Suite.Name(), ErrWrongCiphersuite)
	}
	point := r.scalar.ActOnBase()
	shares := make(map[party.ID]curve.Point, len(p.VerifyingShares))
	for id, share := range p.VerifyingShares {
		shares[id] = share.Add(point)
	}
	return &PublicKeyPackage{
		Suite:           p.Suite,
		VerifyingShares: shares,
		VerifyingKey:    r.RandomizeKey(p.VerifyingKey),
		MinSigners:      p.MinSigners,
	}, nil
}
