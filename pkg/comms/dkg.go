package comms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quorumsig/frost/internal/round"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/quorumsig/frost/pkg/protocol"
	protodkg "github.com/quorumsig/frost/protocols/dkg"
)

// DKGConfig configures a distributed key generation run over the server
// transport.
type DKGConfig struct {
	Client    *Client
	Identity  *Identity
	Suite     frost.Suite
	SelfID    party.ID
	Threshold uint16
	// Peers are all other participants.
	Peers []Peer
	// CreateSession makes this party open the rendezvous session; exactly
	// one participant should set it. The others poll their session list.
	CreateSession bool
	SessionID     uuid.UUID
	PollInterval  time.Duration
}

// RunDKG executes distributed key generation over the encrypted transport
// and returns the resulting key material. The client must already be
// logged in.
func RunDKG(ctx context.Context, cfg DKGConfig) (*protodkg.Result, error) {
	idx := indexPeers(cfg.Peers)
	cipher, err := NewCipher(cfg.Identity.NoiseKey, idx.noiseKeys())
	if err != nil {
		return nil, err
	}

	participants := []party.ID{cfg.SelfID}
	for _, peer := range cfg.Peers {
		participants = append(participants, peer.Identifier)
	}
	handler, err := protocol.NewHandler(protodkg.Keygen(cfg.Suite, cfg.SelfID, participants, cfg.Threshold))
	if err != nil {
		return nil, err
	}

	sessionID := cfg.SessionID
	switch {
	case cfg.CreateSession:
		// The session is deliberately left open: peers may still be
		// draining their queues after we finish. Idle eviction reclaims
		// it. The server requires the owner to appear in the member list.
		members := append(idx.signingKeys(), cfg.Identity.PublicSigningKey())
		if sessionID, err = cfg.Client.CreateSession(ctx, members, 2); err != nil {
			return nil, err
		}
	case sessionID == uuid.Nil:
		for sessionID == uuid.Nil {
			ids, err := cfg.Client.ListSessions(ctx)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				sessionID = ids[0]
				break
			}
			if err := poll(ctx, cfg.PollInterval); err != nil {
				return nil, err
			}
		}
	}

	for !handler.Done() {
		// flush outgoing protocol messages, sealing one copy per
		// recipient: the server must not see protocol plaintext even for
		// broadcasts.
		if err := flushOutgoing(ctx, cfg, handler, cipher, idx, sessionID); err != nil {
			return nil, err
		}
		if handler.Done() {
			break
		}

		msgs, err := cfg.Client.Receive(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			peer, env, err := openFrom(idx, cipher, msg)
			if err != nil {
				return nil, err
			}
			if env.Kind != kindDKG {
				return nil, fmt.Errorf("comms: unexpected message kind %d from %s: %w",
					env.Kind, peer.Identifier, frost.ErrInvalidArgument)
			}
			content, err := protodkg.DecodeContent(cfg.Suite, round.Number(env.Round), env.Payload)
			if err != nil {
				return nil, err
			}
			if err := handler.Update(&round.Message{
				From:      peer.Identifier,
				To:        cfg.SelfID,
				Broadcast: env.Round == 2,
				Content:   content,
			}); err != nil {
				return nil, err
			}
		}
		if len(msgs) == 0 && !handler.Done() {
			if err := poll(ctx, cfg.PollInterval); err != nil {
				return nil, err
			}
		}
	}

	result, err := handler.Result()
	if err != nil {
		return nil, err
	}
	return result.(*protodkg.Result), nil
}

func flushOutgoing(ctx context.Context, cfg DKGConfig, handler *protocol.Handler, cipher *Cipher, idx *peerIndex, sessionID uuid.UUID) error {
	for {
		select {
		case msg, ok := <-handler.Listen():
			if !ok {
				return nil
			}
			if err := sendProtocolMessage(ctx, cfg, cipher, idx, sessionID, msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func sendProtocolMessage(ctx context.Context, cfg DKGConfig, cipher *Cipher, idx *peerIndex, sessionID uuid.UUID, msg *round.Message) error {
	payload, err := protodkg.EncodeContent(cfg.Suite, msg.Content)
	if err != nil {
		return err
	}
	recipients := cfg.Peers
	if !msg.Broadcast {
		peer, ok := idx.byIdentifier[msg.To]
		if !ok {
			return fmt.Errorf("comms: no peer for identifier %s: %w", msg.To, frost.ErrUnknownIdentifier)
		}
		recipients = []Peer{*peer}
	}
	for i := range recipients {
		peer := &recipients[i]
		sealed, err := sealTo(cipher, cfg.Identity.PublicNoiseKey(), peer, &envelope{
			Kind:    kindDKG,
			Round:   uint16(msg.Content.RoundNumber()),
			Payload: payload,
		})
		if err != nil {
			return err
		}
		if err := cfg.Client.Send(ctx, sessionID, [][]byte{peer.SigningKey}, sealed); err != nil {
			return err
		}
	}
	return nil
}
