package comms

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/quorumsig/frost/pkg/party"
	"github.com/quorumsig/frost/server"
)

// Peer is one remote party as the flows see it: a group identifier, the
// signing pubkey the server addresses it by, and the static Noise key that
// seals traffic to it.
type Peer struct {
	Identifier party.ID
	SigningKey []byte
	NoiseKey   []byte
}

// defaultPollInterval paces the non-blocking receive loop.
const defaultPollInterval = 500 * time.Millisecond

// peerIndex provides the lookups the receive loops need.
type peerIndex struct {
	bySigningKey map[string]*Peer
	byIdentifier map[party.ID]*Peer
}

func indexPeers(peers []Peer) *peerIndex {
	idx := &peerIndex{
		bySigningKey: make(map[string]*Peer, len(peers)),
		byIdentifier: make(map[party.ID]*Peer, len(peers)),
	}
	for i := range peers {
		peer := &peers[i]
		idx.bySigningKey[hex.EncodeToString(peer.SigningKey)] = peer
		idx.byIdentifier[peer.Identifier] = peer
	}
	return idx
}

func (idx *peerIndex) noiseKeys() [][]byte {
	keys := make([][]byte, 0, len(idx.byIdentifier))
	for _, peer := range idx.byIdentifier {
		keys = append(keys, peer.NoiseKey)
	}
	return keys
}

func (idx *peerIndex) signingKeys() [][]byte {
	keys := make([][]byte, 0, len(idx.byIdentifier))
	for _, peer := range idx.byIdentifier {
		keys = append(keys, peer.SigningKey)
	}
	return keys
}

// poll sleeps one interval or returns the context error.
func poll(ctx context.Context, interval time.Duration) error {
	if interval == 0 {
		interval = defaultPollInterval
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// openFrom locates the sending peer of a queued message and opens its
// ciphertext.
func openFrom(idx *peerIndex, cipher *Cipher, msg server.Msg) (*Peer, *envelope, error) {
	peer, ok := idx.bySigningKey[msg.Sender.String()]
	if !ok {
		return nil, nil, ErrUnauthenticatedPeer
	}
	senderStatic, sealed, err := unframe(msg.Msg)
	if err != nil {
		return nil, nil, err
	}
	plaintext, err := cipher.Open(senderStatic, sealed)
	if err != nil {
		return nil, nil, err
	}
	env, err := decodeEnvelope(plaintext)
	if err != nil {
		return nil, nil, err
	}
	return peer, env, nil
}

// sealTo seals an envelope for one peer and frames it with our static key.
func sealTo(cipher *Cipher, ourStatic []byte, peer *Peer, env *envelope) ([]byte, error) {
	plaintext, err := env.encode()
	if err != nil {
		return nil, err
	}
	sealed, err := cipher.Seal(peer.NoiseKey, plaintext)
	if err != nil {
		return nil, err
	}
	return frame(ourStatic, sealed), nil
}
