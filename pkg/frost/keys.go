package frost

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/party"
)

// SigningShare is a participant's share sᵢ of the joint secret.
//
// It must never be logged or serialized to anyone but its owner, and
// comparisons go through Equal, which is constant time.
type SigningShare struct {
	scalar curve.Scalar
}

// NewSigningShare wraps a scalar as a signing share.
func NewSigningShare(scalar curve.Scalar) *SigningShare {
	return &SigningShare{scalar: scalar}
}

// Scalar returns a copy of the underlying scalar.
func (s *SigningShare) Scalar() curve.Scalar {
	return s.scalar.Curve().NewScalar().Set(s.scalar)
}

// VerifyingShare returns the public image sᵢ·B of the share.
func (s *SigningShare) VerifyingShare() curve.Point {
	return s.scalar.ActOnBase()
}

// Equal compares two shares in constant time.
func (s *SigningShare) Equal(other *SigningShare) bool {
	a, err := s.scalar.MarshalBinary()
	if err != nil {
		return false
	}
	b, err := other.scalar.MarshalBinary()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Wipe overwrites the share with zero.
func (s *SigningShare) Wipe() {
	s.scalar.Set(s.scalar.Curve().NewScalar())
}

// String redacts the share from accidental logging.
func (s *SigningShare) String() string { return "SigningShare{REDACTED}" }

// VerifyingKey is the group public key Y = s·B.
type VerifyingKey struct {
	point curve.Point
}

// NewVerifyingKey wraps a point as a verifying key.
func NewVerifyingKey(point curve.Point) *VerifyingKey {
	return &VerifyingKey{point: point}
}

// Point returns the underlying group element.
func (k *VerifyingKey) Point() curve.Point { return k.point }

// Equal reports whether two verifying keys are the same element.
func (k *VerifyingKey) Equal(other *VerifyingKey) bool {
	return k.point.Equal(other.point)
}

// Verify checks a Schnorr signature over msg against this key:
//
//	z·B ≟ R + c·Y, c = Challenge(R, Y, msg).
func (k *VerifyingKey) Verify(suite Suite, msg []byte, sig *Signature) error {
	c, err := suite.Challenge(sig.R, k.point, msg)
	if err != nil {
		return fmt.Errorf("frost: computing challenge: %w", err)
	}
	expected := sig.R.Add(c.Act(k.point))
	actual := sig.Z.ActOnBase()
	if !expected.Equal(actual) {
		return ErrInvalidSignature
	}
	return nil
}

// KeyPackage is the private output of key generation for one participant.
type KeyPackage struct {
	Suite          Suite
	Identifier     party.ID
	SigningShare   *SigningShare
	VerifyingShare curve.Point
	VerifyingKey   *VerifyingKey
	MinSigners     uint16
	MaxSigners     uint16
}

// Wipe overwrites the secret share.
func (kp *KeyPackage) Wipe() { kp.SigningShare.Wipe() }

// PublicKeyPackage is the public output of key generation, identical for
// all participants of the same group.
type PublicKeyPackage struct {
	Suite           Suite
	VerifyingShares map[party.ID]curve.Point
	VerifyingKey    *VerifyingKey
	MinSigners      uint16
}

// SignerIDs returns the sorted identifiers of all group members.
func (p *PublicKeyPackage) SignerIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(p.VerifyingShares))
	for id := range p.VerifyingShares {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// encoding helpers: every variable-length field is prefixed with a
// big-endian uint16 length, and every container starts with the suite tag.

func writeLengthPrefixed(buf *bytes.Buffer, data []byte) {
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(data)))
	buf.Write(length[:])
	buf.Write(data)
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], v)
	buf.Write(out[:])
}

type reader struct {
	data []byte
}

func (r *reader) lengthPrefixed() ([]byte, error) {
	if len(r.data) < 2 {
		return nil, ErrMalformedEncoding
	}
	length := int(binary.BigEndian.Uint16(r.data))
	r.data = r.data[2:]
	if len(r.data) < length {
		return nil, ErrMalformedEncoding
	}
	out := r.data[:length]
	r.data = r.data[length:]
	return out, nil
}

func (r *reader) uint16() (uint16, error) {
	if len(r.data) < 2 {
		return 0, ErrMalformedEncoding
	}
	out := binary.BigEndian.Uint16(r.data)
	r.data = r.data[2:]
	return out, nil
}

func (r *reader) empty() bool { return len(r.data) == 0 }

func checkSuiteTag(r *reader, suite Suite) error {
	if len(r.data) < 1 {
		return ErrMalformedEncoding
	}
	tag := SuiteID(r.data[0])
	r.data = r.data[1:]
	if tag != suite.ID() {
		return fmt.Errorf("frost: encoding for suite tag %d, want %d: %w", tag, suite.ID(), ErrWrongCiphersuite)
	}
	return nil
}

func decodeScalar(suite Suite, data []byte) (curve.Scalar, error) {
	s := suite.Group().NewScalar()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("frost: %v: %w", err, ErrMalformedEncoding)
	}
	return s, nil
}

func decodePoint(suite Suite, data []byte) (curve.Point, error) {
	p := suite.Group().NewPoint()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("frost: %v: %w", err, ErrMalformedEncoding)
	}
	return p, nil
}

// Encode serializes the key package in the stable at-rest container format.
func (kp *KeyPackage) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(kp.Suite.ID()))
	writeUint16(buf, uint16(kp.Identifier))
	share, err := kp.SigningShare.scalar.MarshalBinary()
	if err != nil {
		return nil, err
	}
	writeLengthPrefixed(buf, share)
	verifyingShare, err := kp.VerifyingShare.MarshalBinary()
	if err != nil {
		return nil, err
	}
	writeLengthPrefixed(buf, verifyingShare)
	verifyingKey, err := kp.VerifyingKey.point.MarshalBinary()
	if err != nil {
		return nil, err
	}
	writeLengthPrefixed(buf, verifyingKey)
	writeUint16(buf, kp.MinSigners)
	writeUint16(buf, kp.MaxSigners)
	return buf.Bytes(), nil
}

// DecodeKeyPackage parses a key package encoded for the given suite.
func DecodeKeyPackage(suite Suite, data []byte) (*KeyPackage, error) {
	r := &reader{data: data}
	if err := checkSuiteTag(r, suite); err != nil {
		return nil, err
	}
	id, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if !party.ID(id).Valid() {
		return nil, fmt.Errorf("frost: zero identifier: %w", ErrMalformedEncoding)
	}
	shareBytes, err := r.lengthPrefixed()
	if err != nil {
		return nil, err
	}
	share, err := decodeScalar(suite, shareBytes)
	if err != nil {
		return nil, err
	}
	verifyingShareBytes, err := r.lengthPrefixed()
	if err != nil {
		return nil, err
	}
	verifyingShare, err := decodePoint(suite, verifyingShareBytes)
	if err != nil {
		return nil, err
	}
	verifyingKeyBytes, err := r.lengthPrefixed()
	if err != nil {
		return nil, err
	}
	verifyingKey, err := decodePoint(suite, verifyingKeyBytes)
	if err != nil {
		return nil, err
	}
	minSigners, err := r.uint16()
	if err != nil {
		return nil, err
	}
	maxSigners, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if !r.empty() {
		return nil, fmt.Errorf("frost: trailing bytes: %w", ErrMalformedEncoding)
	}
	return &KeyPackage{
		Suite:          suite,
		Identifier:     party.ID(id),
		SigningShare:   NewSigningShare(share),
		VerifyingShare: verifyingShare,
		VerifyingKey:   NewVerifyingKey(verifyingKey),
		MinSigners:     minSigners,
		MaxSigners:     maxSigners,
	}, nil
}

// Encode serializes the public key package. Shares are written in
// identifier order, so honest participants produce byte-identical
// encodings: this is the DKG consistency check.
func (p *PublicKeyPackage) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(p.Suite.ID()))
	writeUint16(buf, p.MinSigners)
	verifyingKey, err := p.VerifyingKey.point.MarshalBinary()
	if err != nil {
		return nil, err
	}
	writeLengthPrefixed(buf, verifyingKey)
	ids := p.SignerIDs()
	writeUint16(buf, uint16(len(ids)))
	for _, id := range ids {
		writeUint16(buf, uint16(id))
		share, err := p.VerifyingShares[id].MarshalBinary()
		if err != nil {
			return nil, err
		}
		writeLengthPrefixed(buf, share)
	}
	return buf.Bytes(), nil
}

// DecodePublicKeyPackage parses a public key package encoded for the given
// suite.
func DecodePublicKeyPackage(suite Suite, data []byte) (*PublicKeyPackage, error) {
	r := &reader{data: data}
	if err := checkSuiteTag(r, suite); err != nil {
		return nil, err
	}
	minSigners, err := r.uint16()
	if err != nil {
		return nil, err
	}
	verifyingKeyBytes, err := r.lengthPrefixed()
	if err != nil {
		return nil, err
	}
	verifyingKey, err := decodePoint(suite, verifyingKeyBytes)
	if err != nil {
		return nil, err
	}
	count, err := r.uint16()
	if err != nil {
		return nil, err
	}
	shares := make(map[party.ID]curve.Point, count)
	for i := 0; i < int(count); i++ {
		id, err := r.uint16()
		if err != nil {
			return nil, err
		}
		if !party.ID(id).Valid() {
			return nil, fmt.Errorf("frost: zero identifier: %w", ErrMalformedEncoding)
		}
		if _, ok := shares[party.ID(id)]; ok {
			return nil, fmt.Errorf("frost: %w: %s", ErrDuplicateIdentifier, party.ID(id))
		}
		shareBytes, err := r.lengthPrefixed()
		if err != nil {
			return nil, err
		}
		share, err := decodePoint(suite, shareBytes)
		if err != nil {
			return nil, err
		}
		shares[party.ID(id)] = share
	}
	if !r.empty() {
		return nil, fmt.Errorf("frost: trailing bytes: %w", ErrMalformedEncoding)
	}
	return &PublicKeyPackage{
		Suite:           suite,
		VerifyingShares: shares,
		VerifyingKey:    NewVerifyingKey(verifyingKey),
		MinSigners:      minSigners,
	}, nil
}
