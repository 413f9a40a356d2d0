package sign

import (
	"fmt"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
)

// Aggregate combines the collected signature shares into a Schnorr
// signature and verifies it before returning.
//
// If the aggregate fails to verify, each share is checked individually so
// the faulty signer can be surfaced as InvalidSignatureShareError; if every
// share passes (for example because fewer than the threshold signed), the
// attempt fails with ErrInvalidAggregate.
func Aggregate(sp *SigningPackage, shares map[party.ID]*SignatureShare, publicKeyPackage *frost.PublicKeyPackage) (*frost.Signature, error) {
	return aggregate(sp, shares, publicKeyPackage)
}

// AggregateRandomized is Aggregate for rerandomized FROST: shares are
// verified against the randomizer-shifted key material, and the signature
// verifies under Y + ρ·B.
func AggregateRandomized(sp *SigningPackage, shares map[party.ID]*SignatureShare, publicKeyPackage *frost.PublicKeyPackage, randomizer *frost.Randomizer) (*frost.Signature, error) {
	randomized, err := randomizer.RandomizePublicKeyPackage(publicKeyPackage)
	if err != nil {
		return nil, err
	}
	return aggregate(sp, shares, randomized)
}

func aggregate(sp *SigningPackage, shares map[party.ID]*SignatureShare, publicKeyPackage *frost.PublicKeyPackage) (*frost.Signature, error) {
	suite := publicKeyPackage.Suite
	group := suite.Group()

	signerIDs := sp.SignerIDs()
	for _, id := range signerIDs {
		if _, ok := shares[id]; !ok {
			return nil, fmt.Errorf("sign: no signature share from %s: %w", id, frost.ErrInvalidArgument)
		}
	}
	if len(shares) != len(signerIDs) {
		return nil, fmt.Errorf("sign: shares from parties outside the signing set: %w", frost.ErrInvalidArgument)
	}

	factors, err := bindingFactors(suite, publicKeyPackage.VerifyingKey.Point(), sp)
	if err != nil {
		return nil, err
	}
	R := groupCommitment(group, sp, factors)

	z := group.NewScalar()
	for _, id := range signerIDs {
		z.Add(shares[id].Share)
	}

	signature := &frost.Signature{R: R, Z: z}
	if err := publicKeyPackage.VerifyingKey.Verify(suite, sp.Message, signature); err == nil {
		return signature, nil
	}

	// The aggregate is bad: attribute blame if any single share is at
	// fault, otherwise the set itself could not produce a signature.
	for _, id := range signerIDs {
		if err := VerifyShare(sp, id, shares[id], publicKeyPackage); err != nil {
			return nil, err
		}
	}
	return nil, frost.ErrInvalidAggregate
}
