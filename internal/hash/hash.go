// Package hash provides the domain-separated transcript hash used to bind
// protocol executions: session identifiers are derived with it, and it
// offers a hash-based commitment scheme (Commit/Decommit). Protocol-critical
// hashing (binding factors, challenges) is defined per ciphersuite instead.
package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the output size of Sum.
const DigestLengthBytes = 64

// Hash is a wrapper around blake3 with domain-separated writes.
type Hash struct {
	h *blake3.Hasher
}

// New creates an empty Hash.
func New() *Hash {
	return &Hash{h: blake3.New()}
}

// Digest returns a reader for the current output of the function,
// finalizing the present state.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns DigestLengthBytes bytes of the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny writes data to the hash state with per-type domain separation.
//
// Supported types: []byte, and WriterToWithDomain.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			if err := writeWithDomain(hash.h, &BytesWithDomain{
				TheDomain: "[]byte",
				Bytes:     t,
			}); err != nil {
				return fmt.Errorf("hash.Hash: write []byte: %w", err)
			}
		case WriterToWithDomain:
			if err := writeWithDomain(hash.h, t); err != nil {
				return fmt.Errorf("hash.Hash: write %s: %w", t.Domain(), err)
			}
		default:
			panic(fmt.Sprintf("hash.Hash: unsupported type %T", d))
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// WriterToWithDomain is implemented by types that know how to write
// themselves into a transcript under a unique domain string.
type WriterToWithDomain interface {
	io.WriterTo
	Domain() string
}

// BytesWithDomain wraps a byte slice with an explicit domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo.
func (b *BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (b *BytesWithDomain) Domain() string { return b.TheDomain }

// writeWithDomain writes (domain length ‖ domain ‖ payload ‖ payload length)
// so that adjacent writes cannot be confused for one another.
func writeWithDomain(w io.Writer, v WriterToWithDomain) error {
	domain := v.Domain()
	if err := binary.Write(w, binary.BigEndian, uint64(len(domain))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, domain); err != nil {
		return err
	}
	// The payload is written through a counting writer, and its length
	// appended afterwards; blake3 being a tree hash, prefix-freeness of the
	// domain header is what matters for separation.
	counter := &countingWriter{inner: w}
	if _, err := v.WriteTo(counter); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, counter.n)
}

type countingWriter struct {
	inner io.Writer
	n     uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.inner.Write(p)
	c.n += uint64(n)
	return n, err
}
