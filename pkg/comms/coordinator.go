package comms

import (
	"context"
	"fmt"
	"time"

	"github.com/quorumsig/frost/pkg/frost"
	frostsign "github.com/quorumsig/frost/pkg/frost/sign"
	"github.com/quorumsig/frost/pkg/party"
	protosign "github.com/quorumsig/frost/protocols/sign"
)

// SigningConfig configures one signing attempt over the server transport.
type SigningConfig struct {
	Client           *Client
	Identity         *Identity
	PublicKeyPackage *frost.PublicKeyPackage
	// Signers are the chosen participants; the coordinator need not be
	// one of them.
	Signers []Peer
	Message []byte
	// Randomized produces a rerandomized signature; requires a suite with
	// rerandomization support.
	Randomized   bool
	PollInterval time.Duration
}

// RunCoordinator drives a full signing attempt: create the session,
// collect commitments, issue the frozen signing package (plus randomizer
// when rerandomizing), collect shares, aggregate, close the session.
//
// The client must already be logged in.
func RunCoordinator(ctx context.Context, cfg SigningConfig) (*frost.Signature, error) {
	suite := cfg.PublicKeyPackage.Suite
	idx := indexPeers(cfg.Signers)
	cipher, err := NewCipher(cfg.Identity.NoiseKey, idx.noiseKeys())
	if err != nil {
		return nil, err
	}

	signerIDs := make([]party.ID, 0, len(cfg.Signers))
	for _, peer := range cfg.Signers {
		signerIDs = append(signerIDs, peer.Identifier)
	}
	coordinator, err := protosign.NewCoordinator(cfg.PublicKeyPackage, signerIDs, cfg.Message)
	if err != nil {
		return nil, err
	}

	// The server requires the session owner to be listed among the members.
	members := append(idx.signingKeys(), cfg.Identity.PublicSigningKey())
	sessionID, err := cfg.Client.CreateSession(ctx, members, 2)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cfg.Client.CloseSession(closeCtx, sessionID)
	}()

	// Round 1: collect commitments from every signer.
	for coordinator.State() == protosign.StateFresh {
		msgs, err := cfg.Client.Receive(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			peer, env, err := openFrom(idx, cipher, msg)
			if err != nil {
				return nil, err
			}
			if env.Kind != kindCommitments {
				return nil, fmt.Errorf("comms: unexpected message kind %d from %s: %w",
					env.Kind, peer.Identifier, frost.ErrInvalidArgument)
			}
			commitments, err := frostsign.DecodeSigningCommitments(suite, env.Payload)
			if err != nil {
				return nil, err
			}
			if _, err := coordinator.AddCommitments(peer.Identifier, commitments); err != nil {
				return nil, err
			}
		}
		if coordinator.State() == protosign.StateFresh {
			if err := poll(ctx, cfg.PollInterval); err != nil {
				return nil, err
			}
		}
	}

	// Freeze and distribute the signing package.
	pkg, err := coordinator.SigningPackage()
	if err != nil {
		return nil, err
	}
	encodedPackage, err := pkg.Encode(suite)
	if err != nil {
		return nil, err
	}
	var encodedRandomizer []byte
	if cfg.Randomized {
		randomizer, err := coordinator.Randomizer()
		if err != nil {
			return nil, err
		}
		if encodedRandomizer, err = randomizer.Encode(); err != nil {
			return nil, err
		}
	}
	for _, peer := range cfg.Signers {
		sealed, err := sealTo(cipher, cfg.Identity.PublicNoiseKey(), &peer, &envelope{
			Kind:       kindSigningPackage,
			Payload:    encodedPackage,
			Randomizer: encodedRandomizer,
		})
		if err != nil {
			return nil, err
		}
		if err := cfg.Client.Send(ctx, sessionID, [][]byte{peer.SigningKey}, sealed); err != nil {
			return nil, err
		}
	}

	// Round 2: collect shares, then aggregate.
	for coordinator.State() == protosign.StatePackageIssued {
		msgs, err := cfg.Client.Receive(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			peer, env, err := openFrom(idx, cipher, msg)
			if err != nil {
				return nil, err
			}
			if env.Kind != kindSignatureShare {
				return nil, fmt.Errorf("comms: unexpected message kind %d from %s: %w",
					env.Kind, peer.Identifier, frost.ErrInvalidArgument)
			}
			share, err := frostsign.DecodeSignatureShare(suite, env.Payload)
			if err != nil {
				return nil, err
			}
			if _, err := coordinator.AddShare(peer.Identifier, share); err != nil {
				return nil, err
			}
		}
		if coordinator.State() == protosign.StatePackageIssued {
			if err := poll(ctx, cfg.PollInterval); err != nil {
				return nil, err
			}
		}
	}

	return coordinator.Aggregate()
}
