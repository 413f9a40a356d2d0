package comms

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/flynn/noise"
)

// Identity is a client's long-term key material: an Ed25519 keypair for
// authenticating against the server, and a static Noise keypair for
// end-to-end encryption with peers. A participant's group identifier is
// unrelated; the mapping lives in the address book.
type Identity struct {
	Name string
	// SigningKey authenticates the challenge/login exchange.
	SigningKey ed25519.PrivateKey
	// NoiseKey is the static Diffie-Hellman keypair for Noise sessions.
	NoiseKey noise.DHKey
}

// GenerateIdentity creates a fresh identity.
func GenerateIdentity(rand io.Reader, name string) (*Identity, error) {
	_, signingKey, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("comms: generating signing key: %w", err)
	}
	noiseKey, err := cipherSuite.GenerateKeypair(rand)
	if err != nil {
		return nil, fmt.Errorf("comms: generating noise key: %w", err)
	}
	return &Identity{Name: name, SigningKey: signingKey, NoiseKey: noiseKey}, nil
}

// PublicSigningKey returns the Ed25519 public key presented to the server.
func (id *Identity) PublicSigningKey() ed25519.PublicKey {
	return id.SigningKey.Public().(ed25519.PublicKey)
}

// PublicNoiseKey returns the static public key peers address this identity
// by.
func (id *Identity) PublicNoiseKey() []byte {
	return id.NoiseKey.Public
}
