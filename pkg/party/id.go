package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cronokirby/saferith"
	"github.com/quorumsig/frost/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// MaxID is the largest integer value an ID can take.
const MaxID = (1 << (ByteSize * 8)) - 1

// ID identifies a participant within one signing group.
//
// IDs are nonzero: the scalar 0 would reveal the constant term of a Shamir
// polynomial. The zero value denotes "no party" and is invalid on the wire.
type ID uint16

// Scalar returns the group scalar corresponding to this ID.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(uint64(id)))
}

// Valid reports whether the ID may identify a participant.
func (id ID) Valid() bool { return id != 0 }

// Bytes returns the big-endian encoding of the ID.
func (id ID) Bytes() []byte {
	bytes := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(bytes, uint16(id))
	return bytes
}

// String returns a base-10 representation of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// FromBytes reads the first ByteSize bytes from b and creates an ID from it.
func FromBytes(b []byte) ID {
	return ID(binary.BigEndian.Uint16(b))
}

// FromString parses a base-10 string as an ID.
func FromString(str string) (ID, error) {
	p, err := strconv.ParseUint(str, 10, 16)
	if err != nil {
		return 0, err
	}
	return ID(p), nil
}

// WriteTo implements io.WriterTo, for transcript hashing.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(id.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string { return "Party ID" }
