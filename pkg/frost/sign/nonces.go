// Package sign implements the two-round FROST signing protocol: nonce
// commitments, signing-package assembly, signature shares and
// aggregation, with optional rerandomization.
package sign

import (
	"fmt"
	"io"

	"github.com/quorumsig/frost/internal/zero"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
)

// SigningNonces is the pair (d, e) of single-use secrets behind a
// commitment. A pair produces at most one signature share and is wiped
// when that share is emitted; a nonce leaked after its share allows full
// key recovery.
type SigningNonces struct {
	suite       frost.Suite
	hiding      curve.Scalar
	binding     curve.Scalar
	commitments *SigningCommitments
	used        bool
}

// SigningCommitments is the public image (D, E) = (d·B, e·B) of a nonce
// pair.
type SigningCommitments struct {
	Hiding  curve.Point
	Binding curve.Point
}

// Commitments returns the public commitments of this nonce pair.
func (n *SigningNonces) Commitments() *SigningCommitments {
	return n.commitments
}

// Wipe overwrites both nonces and marks the pair as spent.
func (n *SigningNonces) Wipe() {
	n.used = true
	zero.Scalars(n.hiding, n.binding)
}

// Commit runs the first signing round: it derives a fresh nonce pair and
// returns it together with its commitments.
//
// Each nonce is H3(32 fresh random bytes ‖ enc(sᵢ)): mixing the signing
// share into the derivation keeps nonces unpredictable even when the
// randomness source is weak, per RFC 9591.
func Commit(suite frost.Suite, share *frost.SigningShare, rand io.Reader) (*SigningNonces, *SigningCommitments, error) {
	hiding, err := generateNonce(suite, share, rand)
	if err != nil {
		return nil, nil, err
	}
	binding, err := generateNonce(suite, share, rand)
	if err != nil {
		zero.Scalar(hiding)
		return nil, nil, err
	}
	commitments := &SigningCommitments{
		Hiding:  hiding.ActOnBase(),
		Binding: binding.ActOnBase(),
	}
	nonces := &SigningNonces{
		suite:       suite,
		hiding:      hiding,
		binding:     binding,
		commitments: commitments,
	}
	return nonces, commitments, nil
}

func generateNonce(suite frost.Suite, share *frost.SigningShare, rand io.Reader) (curve.Scalar, error) {
	random := make([]byte, 32)
	defer zero.Bytes(random)
	if _, err := io.ReadFull(rand, random); err != nil {
		return nil, fmt.Errorf("sign: reading randomness: %w", err)
	}
	shareScalar := share.Scalar()
	defer zero.Scalar(shareScalar)
	encodedShare, err := shareScalar.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(encodedShare)

	input := make([]byte, 0, len(random)+len(encodedShare))
	input = append(input, random...)
	input = append(input, encodedShare...)
	defer zero.Bytes(input)
	return suite.H3(input), nil
}
