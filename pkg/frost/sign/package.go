package sign

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/party"
)

// SigningPackage freezes one signing attempt: the message and the
// commitments of every chosen signer. It is assembled by the coordinator
// after round 1 and distributed unchanged to all signers.
type SigningPackage struct {
	Message     []byte
	Commitments map[party.ID]*SigningCommitments
}

// NewSigningPackage builds a signing package from the collected round 1
// commitments.
func NewSigningPackage(message []byte, commitments map[party.ID]*SigningCommitments) (*SigningPackage, error) {
	if len(commitments) == 0 {
		return nil, fmt.Errorf("sign: no commitments: %w", frost.ErrInvalidArgument)
	}
	for id, c := range commitments {
		if !id.Valid() {
			return nil, fmt.Errorf("sign: zero identifier: %w", frost.ErrInvalidArgument)
		}
		if c == nil || c.Hiding == nil || c.Binding == nil {
			return nil, &frost.MissingCommitmentsError{Culprit: id}
		}
		if c.Hiding.IsIdentity() || c.Binding.IsIdentity() {
			return nil, fmt.Errorf("sign: identity commitment from %s: %w", id, frost.ErrInvalidSigningPackage)
		}
	}
	return &SigningPackage{Message: message, Commitments: commitments}, nil
}

// SignerIDs returns the sorted identifiers of the chosen signers.
func (sp *SigningPackage) SignerIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(sp.Commitments))
	for id := range sp.Commitments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// bindingFactors derives ρ_j = H1(enc(Y) ‖ H4(msg) ‖ H5(commitment list) ‖
// enc(j)) for every signer, binding each commitment to the whole package.
func bindingFactors(suite frost.Suite, verifyingKey curve.Point, sp *SigningPackage) (map[party.ID]curve.Scalar, error) {
	group := suite.Group()

	list := new(bytes.Buffer)
	ids := sp.SignerIDs()
	for _, id := range ids {
		idEnc, err := id.Scalar(group).MarshalBinary()
		if err != nil {
			return nil, err
		}
		hiding, err := sp.Commitments[id].Hiding.MarshalBinary()
		if err != nil {
			return nil, err
		}
		binding, err := sp.Commitments[id].Binding.MarshalBinary()
		if err != nil {
			return nil, err
		}
		list.Write(idEnc)
		list.Write(hiding)
		list.Write(binding)
	}

	encodedKey, err := verifyingKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	prefix := new(bytes.Buffer)
	prefix.Write(encodedKey)
	prefix.Write(suite.H4(sp.Message))
	prefix.Write(suite.H5(list.Bytes()))

	factors := make(map[party.ID]curve.Scalar, len(ids))
	for _, id := range ids {
		idEnc, err := id.Scalar(group).MarshalBinary()
		if err != nil {
			return nil, err
		}
		input := make([]byte, 0, prefix.Len()+len(idEnc))
		input = append(input, prefix.Bytes()...)
		input = append(input, idEnc...)
		factors[id] = suite.H1(input)
	}
	return factors, nil
}

// groupCommitment computes R = Σⱼ (Dⱼ + ρⱼ·Eⱼ).
func groupCommitment(group curve.Curve, sp *SigningPackage, factors map[party.ID]curve.Scalar) curve.Point {
	R := group.NewPoint()
	for id, c := range sp.Commitments {
		R = R.Add(c.Hiding.Add(factors[id].Act(c.Binding)))
	}
	return R
}
