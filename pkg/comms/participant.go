package comms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quorumsig/frost/pkg/frost"
	frostsign "github.com/quorumsig/frost/pkg/frost/sign"
	protosign "github.com/quorumsig/frost/protocols/sign"
)

// ParticipantConfig configures one signing attempt from a participant's
// side.
type ParticipantConfig struct {
	Client     *Client
	Identity   *Identity
	KeyPackage *frost.KeyPackage
	// Coordinator is the peer that assembles the signing package.
	Coordinator Peer
	// SessionID selects the session; when zero the participant polls its
	// session list until the coordinator's session appears.
	SessionID    uuid.UUID
	PollInterval time.Duration
}

// run executes one signing attempt: send commitments, wait for
// the signing package, emit the signature share. The nonces live exactly
// as long as the attempt.
func (cfg ParticipantConfig) run(ctx context.Context) error {
	suite := cfg.KeyPackage.Suite
	peers := []Peer{cfg.Coordinator}
	idx := indexPeers(peers)
	cipher, err := NewCipher(cfg.Identity.NoiseKey, idx.noiseKeys())
	if err != nil {
		return err
	}

	sessionID := cfg.SessionID
	for sessionID == uuid.Nil {
		ids, err := cfg.Client.ListSessions(ctx)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			sessionID = ids[0]
			break
		}
		if err := poll(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}

	participant := protosign.NewParticipant(cfg.KeyPackage)
	commitments, err := participant.Commit()
	if err != nil {
		return err
	}
	encodedCommitments, err := commitments.Encode(suite)
	if err != nil {
		return err
	}
	sealed, err := sealTo(cipher, cfg.Identity.PublicNoiseKey(), &cfg.Coordinator, &envelope{
		Kind:       kindCommitments,
		Identifier: uint16(cfg.KeyPackage.Identifier),
		Payload:    encodedCommitments,
	})
	if err != nil {
		return err
	}
	if err := cfg.Client.Send(ctx, sessionID, [][]byte{cfg.Coordinator.SigningKey}, sealed); err != nil {
		return err
	}

	// Wait for the frozen signing package.
	for {
		msgs, err := cfg.Client.Receive(ctx, sessionID)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			_, env, err := openFrom(idx, cipher, msg)
			if err != nil {
				return err
			}
			if env.Kind != kindSigningPackage {
				return fmt.Errorf("comms: unexpected message kind %d: %w", env.Kind, frost.ErrInvalidArgument)
			}
			pkg, err := frostsign.DecodeSigningPackage(suite, env.Payload)
			if err != nil {
				return err
			}
			var randomizer *frost.Randomizer
			if len(env.Randomizer) > 0 {
				randomized, ok := suite.(frost.RandomizedSuite)
				if !ok {
					return fmt.Errorf("comms: randomizer for suite %q: %w", suite.Name(), frost.ErrWrongCiphersuite)
				}
				if randomizer, err = frost.DecodeRandomizer(randomized, env.Randomizer); err != nil {
					return err
				}
			}
			share, err := participant.Sign(pkg, randomizer)
			if err != nil {
				return err
			}
			encodedShare, err := share.Encode(suite)
			if err != nil {
				return err
			}
			sealed, err := sealTo(cipher, cfg.Identity.PublicNoiseKey(), &cfg.Coordinator, &envelope{
				Kind:       kindSignatureShare,
				Identifier: uint16(cfg.KeyPackage.Identifier),
				Payload:    encodedShare,
			})
			if err != nil {
				return err
			}
			return cfg.Client.Send(ctx, sessionID, [][]byte{cfg.Coordinator.SigningKey}, sealed)
		}
		if err := poll(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

// RunParticipant executes one signing attempt with the given
// configuration. The client must already be logged in.
func RunParticipant(ctx context.Context, cfg ParticipantConfig) error {
	return cfg.run(ctx)
}
