package comms

import (
	"encoding/hex"
	"fmt"

	"github.com/flynn/noise"
)

// cipherSuite matches the reference stack: X25519, ChaCha20-Poly1305,
// BLAKE2s.
var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashBLAKE2s)

// channel is one direction of a Noise session. The one-way K pattern is
// used per direction: both static keys are known from the address book, so
// a single payload-bearing handshake message suffices and no interactive
// round trip is needed through the store-and-forward queues. Each
// direction authenticates both peers; replayed or reordered ciphertexts
// fail authentication.
type channel struct {
	handshake *noise.HandshakeState
	transport *noise.CipherState
	initiator bool
}

func newChannel(static noise.DHKey, peerStatic []byte, initiator bool) (*channel, error) {
	handshake, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeK,
		Initiator:     initiator,
		StaticKeypair: static,
		PeerStatic:    peerStatic,
	})
	if err != nil {
		return nil, fmt.Errorf("comms: noise handshake state: %w", err)
	}
	return &channel{handshake: handshake, initiator: initiator}, nil
}

// seal encrypts one message, performing the handshake on first use.
func (c *channel) seal(plaintext []byte) ([]byte, error) {
	if c.transport != nil {
		return c.transport.Encrypt(nil, nil, plaintext)
	}
	msg, cs0, _, err := c.handshake.WriteMessage(nil, plaintext)
	if err != nil {
		return nil, fmt.Errorf("comms: noise handshake write: %w", err)
	}
	c.handshake = nil
	c.transport = cs0
	return msg, nil
}

// open decrypts one message, performing the handshake on first use.
func (c *channel) open(ciphertext []byte) ([]byte, error) {
	if c.transport != nil {
		plaintext, err := c.transport.Decrypt(nil, nil, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrUnauthenticatedPeer)
		}
		return plaintext, nil
	}
	plaintext, cs0, _, err := c.handshake.ReadMessage(nil, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthenticatedPeer)
	}
	c.handshake = nil
	c.transport = cs0
	return plaintext, nil
}

// Cipher seals and opens messages for a fixed set of peers, one
// independent Noise session pair per peer. Peers are addressed by their
// static public key.
type Cipher struct {
	sendTo   map[string]*channel
	recvFrom map[string]*channel
}

// NewCipher builds the session pairs between our static key and every
// peer.
func NewCipher(static noise.DHKey, peerStatics [][]byte) (*Cipher, error) {
	c := &Cipher{
		sendTo:   make(map[string]*channel, len(peerStatics)),
		recvFrom: make(map[string]*channel, len(peerStatics)),
	}
	for _, peer := range peerStatics {
		key := hex.EncodeToString(peer)
		send, err := newChannel(static, peer, true)
		if err != nil {
			return nil, err
		}
		recv, err := newChannel(static, peer, false)
		if err != nil {
			return nil, err
		}
		c.sendTo[key] = send
		c.recvFrom[key] = recv
	}
	return c, nil
}

// Seal encrypts msg for the given peer.
func (c *Cipher) Seal(peerStatic []byte, msg []byte) ([]byte, error) {
	ch, ok := c.sendTo[hex.EncodeToString(peerStatic)]
	if !ok {
		return nil, fmt.Errorf("comms: unknown recipient %x: %w", peerStatic, ErrUnauthenticatedPeer)
	}
	return ch.seal(msg)
}

// Open decrypts a ciphertext from the given peer. Decryption implicitly
// authenticates the sender: a tampered sender key fails to open.
func (c *Cipher) Open(peerStatic []byte, ciphertext []byte) ([]byte, error) {
	ch, ok := c.recvFrom[hex.EncodeToString(peerStatic)]
	if !ok {
		return nil, fmt.Errorf("comms: unknown sender %x: %w", peerStatic, ErrUnauthenticatedPeer)
	}
	return ch.open(ciphertext)
}
