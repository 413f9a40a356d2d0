// Package dealer implements trusted-dealer key generation: a single party
// samples the joint secret, splits it with Shamir sharing, and is trusted
// to erase it afterwards.
package dealer

import (
	"fmt"
	"io"

	"github.com/quorumsig/frost/internal/zero"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/polynomial"
	"github.com/quorumsig/frost/pkg/math/sample"
	"github.com/quorumsig/frost/pkg/party"
)

// Keygen generates key material for maxSigners participants with
// identifiers 1..maxSigners, of which any minSigners can sign.
func Keygen(suite frost.Suite, minSigners, maxSigners uint16, rand io.Reader) (map[party.ID]*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	ids := make([]party.ID, maxSigners)
	for i := range ids {
		ids[i] = party.ID(i + 1)
	}
	return KeygenWithIdentifiers(suite, minSigners, party.NewIDSlice(ids), rand)
}

// KeygenWithIdentifiers is Keygen with an explicit identifier set; the
// group size is len(identifiers).
func KeygenWithIdentifiers(suite frost.Suite, minSigners uint16, identifiers party.IDSlice, rand io.Reader) (map[party.ID]*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	maxSigners := uint16(len(identifiers))
	if minSigners < 2 || minSigners > maxSigners {
		return nil, nil, fmt.Errorf("dealer: %d-of-%d: %w", minSigners, maxSigners, frost.ErrInvalidThreshold)
	}
	if !identifiers.Valid() {
		return nil, nil, fmt.Errorf("dealer: identifiers must be nonzero and distinct: %w", frost.ErrInvalidArgument)
	}

	group := suite.Group()
	secret := sample.ScalarNonZero(rand, group)
	f := polynomial.NewPolynomial(group, int(minSigners)-1, secret, rand)
	defer f.Wipe()
	defer zero.Scalar(secret)

	verifyingKey := frost.NewVerifyingKey(secret.ActOnBase())

	keyPackages := make(map[party.ID]*frost.KeyPackage, maxSigners)
	verifyingShares := make(map[party.ID]curve.Point, maxSigners)
	for _, id := range identifiers {
		share := f.Evaluate(id.Scalar(group))
		verifyingShare := share.ActOnBase()
		verifyingShares[id] = verifyingShare
		keyPackages[id] = &frost.KeyPackage{
			Suite:          suite,
			Identifier:     id,
			SigningShare:   frost.NewSigningShare(share),
			VerifyingShare: verifyingShare,
			VerifyingKey:   verifyingKey,
			MinSigners:     minSigners,
			MaxSigners:     maxSigners,
		}
	}

	publicKeyPackage := &frost.PublicKeyPackage{
		Suite:           suite,
		VerifyingShares: verifyingShares,
		VerifyingKey:    verifyingKey,
		MinSigners:      minSigners,
	}
	return keyPackages, publicKeyPackage, nil
}
