// Package dkg runs distributed key generation as an online round-based
// protocol: round 1 deals and broadcasts commitments, round 2 sends
// pairwise shares, round 3 derives the key material.
//
// The cryptographic contracts live in pkg/frost/dkg; this package only
// sequences them over a network.
package dkg

import (
	"fmt"

	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/quorumsig/frost/pkg/protocol"
)

const (
	protocolID                  = "frost/dkg"
	protocolRounds round.Number = 3
)

var (
	_ round.Round = (*round1)(nil)
	_ round.Round = (*round2)(nil)
	_ round.Round = (*round3)(nil)
)

// Result is the output of a completed key generation.
type Result struct {
	KeyPackage       *frost.KeyPackage
	PublicKeyPackage *frost.PublicKeyPackage
}

// Keygen returns the StartFunc for a DKG execution among participants with
// the given threshold.
func Keygen(suite frost.Suite, selfID party.ID, participants []party.ID, threshold uint16) protocol.StartFunc {
	return func() (round.Session, error) {
		helper, err := round.NewSession(round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           selfID,
			PartyIDs:         participants,
			Threshold:        threshold,
			Suite:            suite,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("dkg.Keygen: %w", err)
		}
		return &round1{Helper: helper, threshold: threshold}, nil
	}
}
