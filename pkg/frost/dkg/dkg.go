// Package dkg implements Pedersen-style verifiable distributed key
// generation. No party ever sees the joint secret: each participant deals
// a share of their own polynomial to every peer, and the joint key is the
// sum of all constant terms.
//
// The three parts correspond to Figure 1 of the FROST paper. Part 1 is
// local, Part 2 consumes everyone's broadcast, Part 3 consumes the
// pairwise shares. Once Part 2 or Part 3 accepts a complete package set, the
// secret state it consumes is wiped on return, successful or not; a call
// rejected for an incomplete package set leaves that state untouched.
package dkg

import (
	"crypto/rand"
	"fmt"

	"github.com/quorumsig/frost/internal/zero"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/polynomial"
	"github.com/quorumsig/frost/pkg/math/sample"
	"github.com/quorumsig/frost/pkg/party"
)

// Round1SecretPackage is the private output of Part 1: the dealt
// polynomial, kept until Part 2.
type Round1SecretPackage struct {
	suite      frost.Suite
	identifier party.ID
	f          *polynomial.Polynomial
	commitment *polynomial.Exponent
	minSigners uint16
	maxSigners uint16
}

// Wipe destroys the secret polynomial.
func (s *Round1SecretPackage) Wipe() { s.f.Wipe() }

// Identifier returns the owner of this secret package.
func (s *Round1SecretPackage) Identifier() party.ID { return s.identifier }

// Round1Package is participant i's public broadcast: the commitment to
// their polynomial and a Schnorr proof of knowledge of its constant term.
type Round1Package struct {
	Commitment *polynomial.Exponent
	ProofR     curve.Point
	ProofZ     curve.Scalar
}

// Round2SecretPackage is the private output of Part 2: the participant's
// own share of their own polynomial, plus their commitment, kept until
// Part 3.
type Round2SecretPackage struct {
	suite      frost.Suite
	identifier party.ID
	ownShare   curve.Scalar
	commitment *polynomial.Exponent
	minSigners uint16
	maxSigners uint16
}

// Wipe destroys the retained share.
func (s *Round2SecretPackage) Wipe() { zero.Scalar(s.ownShare) }

// Round2Package carries the share f_i(id_j) from dealer i to receiver j.
// It must only ever travel over an end-to-end encrypted channel.
type Round2Package struct {
	SigningShare curve.Scalar
}

// Part1 samples a secret polynomial of degree minSigners-1 and produces
// the broadcast package for all peers.
func Part1(suite frost.Suite, identifier party.ID, minSigners, maxSigners uint16) (*Round1SecretPackage, *Round1Package, error) {
	if minSigners < 2 || minSigners > maxSigners {
		return nil, nil, fmt.Errorf("dkg: %d-of-%d: %w", minSigners, maxSigners, frost.ErrInvalidThreshold)
	}
	if !identifier.Valid() {
		return nil, nil, fmt.Errorf("dkg: zero identifier: %w", frost.ErrInvalidArgument)
	}

	group := suite.Group()
	constant := sample.ScalarNonZero(rand.Reader, group)
	f := polynomial.NewPolynomial(group, int(minSigners)-1, constant, rand.Reader)
	commitment := polynomial.NewPolynomialExponent(f)

	proofR, proofZ, err := proveKnowledge(suite, identifier, constant, commitment.Constant())
	if err != nil {
		f.Wipe()
		return nil, nil, err
	}

	secret := &Round1SecretPackage{
		suite:      suite,
		identifier: identifier,
		f:          f,
		commitment: commitment,
		minSigners: minSigners,
		maxSigners: maxSigners,
	}
	public := &Round1Package{
		Commitment: commitment,
		ProofR:     proofR,
		ProofZ:     proofZ,
	}
	return secret, public, nil
}

// Part2 verifies every peer's proof of knowledge and deals one share to
// each of them. The round 1 secret package is consumed: its polynomial is
// wiped before returning.
func Part2(secret *Round1SecretPackage, round1Packages map[party.ID]*Round1Package) (*Round2SecretPackage, map[party.ID]*Round2Package, error) {
	if len(round1Packages) != int(secret.maxSigners)-1 {
		// Partial package sets leave the secret state untouched, so the
		// caller can wait for the remaining broadcasts.
		return nil, nil, fmt.Errorf("dkg: got %d round 1 packages, want %d: %w",
			len(round1Packages), secret.maxSigners-1, frost.ErrInvalidArgument)
	}
	defer secret.Wipe()

	group := secret.suite.Group()
	for id, pkg := range round1Packages {
		if id == secret.identifier {
			return nil, nil, fmt.Errorf("dkg: received own round 1 package: %w", frost.ErrDuplicateIdentifier)
		}
		if pkg.Commitment.Degree() != int(secret.minSigners)-1 {
			return nil, nil, fmt.Errorf("dkg: commitment from %s has degree %d, want %d: %w",
				id, pkg.Commitment.Degree(), secret.minSigners-1, frost.ErrInvalidArgument)
		}
		if !verifyKnowledge(secret.suite, id, pkg.Commitment.Constant(), pkg.ProofR, pkg.ProofZ) {
			return nil, nil, &frost.InvalidProofOfKnowledgeError{Culprit: id}
		}
	}

	round2Packages := make(map[party.ID]*Round2Package, len(round1Packages))
	for id := range round1Packages {
		round2Packages[id] = &Round2Package{
			SigningShare: secret.f.Evaluate(id.Scalar(group)),
		}
	}

	round2Secret := &Round2SecretPackage{
		suite:      secret.suite,
		identifier: secret.identifier,
		ownShare:   secret.f.Evaluate(secret.identifier.Scalar(group)),
		commitment: secret.commitment,
		minSigners: secret.minSigners,
		maxSigners: secret.maxSigners,
	}
	return round2Secret, round2Packages, nil
}

// Part3 verifies the received shares against the round 1 commitments and
// derives the key package and the group's public key package.
//
// Both maps must contain exactly the other maxSigners-1 participants.
func Part3(secret *Round2SecretPackage, round1Packages map[party.ID]*Round1Package, round2Packages map[party.ID]*Round2Package) (*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	if len(round2Packages) != int(secret.maxSigners)-1 || len(round1Packages) != len(round2Packages) {
		return nil, nil, fmt.Errorf("dkg: incomplete package sets: %w", frost.ErrInvalidArgument)
	}
	defer secret.Wipe()
	for id := range round2Packages {
		if _, ok := round1Packages[id]; !ok {
			return nil, nil, fmt.Errorf("dkg: round 2 package from %s without round 1 package: %w",
				id, frost.ErrUnknownIdentifier)
		}
	}

	group := secret.suite.Group()
	selfScalar := secret.identifier.Scalar(group)

	// f_j(id_i)·B must equal the evaluation of C_j at id_i.
	for id, pkg := range round2Packages {
		expected := round1Packages[id].Commitment.Evaluate(selfScalar)
		if !pkg.SigningShare.ActOnBase().Equal(expected) {
			return nil, nil, &frost.InvalidShareError{Culprit: id}
		}
	}

	// s_i = f_i(id_i) + Σ_{j≠i} f_j(id_i)
	signingShare := group.NewScalar().Set(secret.ownShare)
	for _, pkg := range round2Packages {
		signingShare.Add(pkg.SigningShare)
		zero.Scalar(pkg.SigningShare)
	}

	commitments := make([]*polynomial.Exponent, 0, len(round1Packages)+1)
	commitments = append(commitments, secret.commitment)
	allIDs := []party.ID{secret.identifier}
	for id, pkg := range round1Packages {
		commitments = append(commitments, pkg.Commitment)
		allIDs = append(allIDs, id)
	}
	joint, err := polynomial.Sum(commitments)
	if err != nil {
		zero.Scalar(signingShare)
		return nil, nil, fmt.Errorf("dkg: summing commitments: %w", err)
	}

	verifyingShares := make(map[party.ID]curve.Point, len(allIDs))
	for _, id := range party.NewIDSlice(allIDs) {
		verifyingShares[id] = joint.Evaluate(id.Scalar(group))
	}

	// Self-consistency: our aggregated share must match the share the
	// public commitments predict for us.
	if !signingShare.ActOnBase().Equal(verifyingShares[secret.identifier]) {
		zero.Scalar(signingShare)
		return nil, nil, frost.ErrInconsistentPublicKeyPackage
	}

	verifyingKey := frost.NewVerifyingKey(joint.Constant())
	keyPackage := &frost.KeyPackage{
		Suite:          secret.suite,
		Identifier:     secret.identifier,
		SigningShare:   frost.NewSigningShare(signingShare),
		VerifyingShare: verifyingShares[secret.identifier],
		VerifyingKey:   verifyingKey,
		MinSigners:     secret.minSigners,
		MaxSigners:     secret.maxSigners,
	}
	publicKeyPackage := &frost.PublicKeyPackage{
		Suite:           secret.suite,
		VerifyingShares: verifyingShares,
		VerifyingKey:    verifyingKey,
		MinSigners:      secret.minSigners,
	}
	return keyPackage, publicKeyPackage, nil
}

// proveKnowledge produces the Schnorr proof σ_i = (R, μ) for the constant
// term: R = k·B, c = HDKG(id ‖ φ₀ ‖ R), μ = k + a₀·c.
func proveKnowledge(suite frost.Suite, id party.ID, constant curve.Scalar, public curve.Point) (curve.Point, curve.Scalar, error) {
	group := suite.Group()
	k := sample.ScalarNonZero(rand.Reader, group)
	defer zero.Scalar(k)
	R := k.ActOnBase()

	c, err := knowledgeChallenge(suite, id, public, R)
	if err != nil {
		return nil, nil, err
	}
	mu := group.NewScalar().Set(constant).Mul(c).Add(k)
	return R, mu, nil
}

// verifyKnowledge checks R ≟ μ·B - c·φ₀.
func verifyKnowledge(suite frost.Suite, id party.ID, public, R curve.Point, mu curve.Scalar) bool {
	c, err := knowledgeChallenge(suite, id, public, R)
	if err != nil {
		return false
	}
	expected := mu.ActOnBase().Sub(c.Act(public))
	return expected.Equal(R)
}

func knowledgeChallenge(suite frost.Suite, id party.ID, public, R curve.Point) (curve.Scalar, error) {
	idScalar, err := id.Scalar(suite.Group()).MarshalBinary()
	if err != nil {
		return nil, err
	}
	encodedPublic, err := public.MarshalBinary()
	if err != nil {
		return nil, err
	}
	encodedR, err := R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	input := make([]byte, 0, len(idScalar)+len(encodedPublic)+len(encodedR))
	input = append(input, idScalar...)
	input = append(input, encodedPublic...)
	input = append(input, encodedR...)
	return suite.HDKG(input), nil
}
