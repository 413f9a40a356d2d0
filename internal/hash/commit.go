package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"
)

// SecParamBytes is the size of commitment nonces.
const SecParamBytes = 32

// Commitment is the hash of a value together with a fresh nonce.
type Commitment []byte

// Decommitment is the nonce that opens a Commitment.
type Decommitment []byte

// Validate checks the length of the commitment.
func (c Commitment) Validate() error {
	if len(c) != DigestLengthBytes {
		return errors.New("hash: commitment has wrong length")
	}
	return nil
}

// Validate checks the length of the decommitment.
func (d Decommitment) Validate() error {
	if len(d) != SecParamBytes {
		return errors.New("hash: decommitment has wrong length")
	}
	return nil
}

// Commit returns the commitment to the given values over the current hash
// state, and the corresponding decommitment nonce.
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	decommitment := make(Decommitment, SecParamBytes)
	if _, err := io.ReadFull(rand.Reader, decommitment); err != nil {
		return nil, nil, errors.New("hash.Commit: failed to generate nonce")
	}
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		return nil, nil, err
	}
	if err := h.WriteAny([]byte(decommitment)); err != nil {
		return nil, nil, err
	}
	return h.Sum(), decommitment, nil
}

// Decommit verifies that the commitment opens to the given values with the
// given nonce.
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	if c.Validate() != nil || d.Validate() != nil {
		return false
	}
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		return false
	}
	if err := h.WriteAny([]byte(d)); err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(h.Sum(), c) == 1
}
