package comms

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Message kinds carried inside the Noise channel.
const (
	kindCommitments    uint8 = 1
	kindSigningPackage uint8 = 2
	kindSignatureShare uint8 = 3
	kindDKG            uint8 = 4
)

// envelope is the plaintext frame sealed into the Noise channel. The
// server only ever sees its ciphertext.
type envelope struct {
	Kind       uint8  `cbor:"kind"`
	Identifier uint16 `cbor:"identifier,omitempty"`
	Round      uint16 `cbor:"round,omitempty"`
	Payload    []byte `cbor:"payload"`
	Randomizer []byte `cbor:"randomizer,omitempty"`
}

func (e *envelope) encode() ([]byte, error) {
	return cbor.Marshal(e)
}

func decodeEnvelope(data []byte) (*envelope, error) {
	var e envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("comms: malformed envelope: %w", err)
	}
	return &e, nil
}

// noiseKeySize is the length of the static-key prefix on sealed payloads.
const noiseKeySize = 32

// frame prefixes the sealed ciphertext with the sender's static key so the
// recipient can select the right Noise session.
func frame(senderStatic, sealed []byte) []byte {
	out := make([]byte, 0, len(senderStatic)+len(sealed))
	out = append(out, senderStatic...)
	return append(out, sealed...)
}

// unframe splits a framed payload into the sender's static key and the
// ciphertext.
func unframe(data []byte) (senderStatic, sealed []byte, err error) {
	if len(data) < noiseKeySize {
		return nil, nil, fmt.Errorf("comms: framed payload too short: %w", ErrUnauthenticatedPeer)
	}
	return data[:noiseKeySize], data[noiseKeySize:], nil
}
