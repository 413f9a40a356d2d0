package sign

import (
	"fmt"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/polynomial"
	"github.com/quorumsig/frost/pkg/party"
)

// SignatureShare is one signer's round 2 contribution z_i.
type SignatureShare struct {
	Share curve.Scalar
}

// Sign runs the second signing round for one participant: it validates the
// signing package, computes z_i = d_i + ρ_i·e_i + λ_i·s_i·c, and wipes the
// nonces. The nonce pair cannot be used again afterwards.
func Sign(sp *SigningPackage, nonces *SigningNonces, keyPackage *frost.KeyPackage) (*SignatureShare, error) {
	return sign(sp, nonces, keyPackage)
}

// SignRandomized is Sign for rerandomized FROST: the participant's share
// and the group key are shifted by the coordinator-chosen randomizer
// before signing, so the result verifies under Y + ρ·B.
func SignRandomized(sp *SigningPackage, nonces *SigningNonces, keyPackage *frost.KeyPackage, randomizer *frost.Randomizer) (*SignatureShare, error) {
	randomized, err := randomizer.RandomizeKeyPackage(keyPackage)
	if err != nil {
		return nil, err
	}
	defer randomized.Wipe()
	return sign(sp, nonces, randomized)
}

func sign(sp *SigningPackage, nonces *SigningNonces, keyPackage *frost.KeyPackage) (*SignatureShare, error) {
	if nonces.used {
		return nil, frost.ErrNonceReuse
	}
	suite := keyPackage.Suite
	group := suite.Group()

	signerIDs := sp.SignerIDs()
	if len(signerIDs) < int(keyPackage.MinSigners) {
		return nil, fmt.Errorf("sign: %d signers below threshold %d: %w",
			len(signerIDs), keyPackage.MinSigners, frost.ErrInvalidSigningPackage)
	}
	own, ok := sp.Commitments[keyPackage.Identifier]
	if !ok {
		return nil, fmt.Errorf("sign: package omits own identifier %s: %w",
			keyPackage.Identifier, frost.ErrInvalidSigningPackage)
	}
	// The coordinator must not have altered our commitments.
	if !own.Hiding.Equal(nonces.commitments.Hiding) || !own.Binding.Equal(nonces.commitments.Binding) {
		return nil, fmt.Errorf("sign: package carries modified commitments: %w", frost.ErrInvalidSigningPackage)
	}

	factors, err := bindingFactors(suite, keyPackage.VerifyingKey.Point(), sp)
	if err != nil {
		return nil, err
	}
	R := groupCommitment(group, sp, factors)

	c, err := suite.Challenge(R, keyPackage.VerifyingKey.Point(), sp.Message)
	if err != nil {
		return nil, err
	}
	lambda := polynomial.LagrangeSingle(group, signerIDs, keyPackage.Identifier)

	// z_i = d_i + ρ_i·e_i + λ_i·s_i·c
	share := keyPackage.SigningShare.Scalar()
	z := share.Mul(lambda).Mul(c)
	z.Add(group.NewScalar().Set(nonces.binding).Mul(factors[keyPackage.Identifier]))
	z.Add(nonces.hiding)

	// The nonces are spent the moment the share exists.
	nonces.Wipe()

	return &SignatureShare{Share: z}, nil
}

// VerifyShare checks a single signature share against the signer's
// verifying share:
//
//	z_i·B ≟ D_i + ρ_i·E_i + c·λ_i·Y_i.
func VerifyShare(sp *SigningPackage, id party.ID, share *SignatureShare, publicKeyPackage *frost.PublicKeyPackage) error {
	suite := publicKeyPackage.Suite
	group := suite.Group()

	commitments, ok := sp.Commitments[id]
	if !ok {
		return &frost.MissingCommitmentsError{Culprit: id}
	}
	verifyingShare, ok := publicKeyPackage.VerifyingShares[id]
	if !ok {
		return fmt.Errorf("sign: %s: %w", id, frost.ErrUnknownIdentifier)
	}

	factors, err := bindingFactors(suite, publicKeyPackage.VerifyingKey.Point(), sp)
	if err != nil {
		return err
	}
	R := groupCommitment(group, sp, factors)
	c, err := suite.Challenge(R, publicKeyPackage.VerifyingKey.Point(), sp.Message)
	if err != nil {
		return err
	}
	lambda := polynomial.LagrangeSingle(group, sp.SignerIDs(), id)

	expected := commitments.Hiding.Add(factors[id].Act(commitments.Binding))
	expected = expected.Add(group.NewScalar().Set(c).Mul(lambda).Act(verifyingShare))
	if !share.Share.ActOnBase().Equal(expected) {
		return &frost.InvalidSignatureShareError{Culprit: id}
	}
	return nil
}
