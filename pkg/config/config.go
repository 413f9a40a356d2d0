// Package config is the persistence port: the on-disk document holding
// identities, contacts and group key material. Storage is a plain cbor
// container; encryption at rest is out of scope and a documented risk.
package config

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/flynn/noise"
	"github.com/fxamacker/cbor/v2"
	"github.com/quorumsig/frost/pkg/comms"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
)

// Identity is a stored long-term identity.
type Identity struct {
	Name            string `cbor:"name"`
	SigningKey      []byte `cbor:"signing_key"`
	NoisePrivateKey []byte `cbor:"noise_private_key"`
	NoisePublicKey  []byte `cbor:"noise_public_key"`
}

// Contact maps a human name to a peer's keys.
type Contact struct {
	Name       string `cbor:"name"`
	SigningKey []byte `cbor:"signing_key"`
	NoiseKey   []byte `cbor:"noise_key"`
}

// GroupMember records one member's identifier and keys within a group.
type GroupMember struct {
	Identifier uint16 `cbor:"identifier"`
	SigningKey []byte `cbor:"signing_key"`
	NoiseKey   []byte `cbor:"noise_key"`
}

// Group is one signing group this client belongs to.
type Group struct {
	Name string `cbor:"name"`
	// Suite is the ciphersuite context string.
	Suite string `cbor:"suite"`
	// KeyPackage is this participant's private key material, in the
	// suite-tagged binary container format.
	KeyPackage []byte `cbor:"key_package"`
	// PublicKeyPackage is the group's public key material.
	PublicKeyPackage []byte `cbor:"public_key_package"`
	Identifier       uint16 `cbor:"identifier"`
	Members          []GroupMember `cbor:"members"`
	ServerURL        string `cbor:"server_url"`
}

// Document is the root of the config file.
type Document struct {
	Version    uint16     `cbor:"version"`
	Identities []Identity `cbor:"identities"`
	Contacts   []Contact  `cbor:"contacts"`
	Groups     []Group    `cbor:"groups"`
}

const documentVersion = 1

// Load reads and parses the document at path. A missing file yields an
// empty document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{Version: documentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("config: unsupported version %d", doc.Version)
	}
	return &doc, nil
}

// Save writes the document atomically: to a temporary file in the same
// directory, synced, then renamed over the target.
func Save(path string, doc *Document) error {
	doc.Version = documentVersion
	data, err := cbor.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	return writeAtomic(path, data)
}

// Identity looks up a stored identity by name; an empty name selects the
// only identity when exactly one exists.
func (doc *Document) Identity(name string) (*comms.Identity, error) {
	var found *Identity
	for i := range doc.Identities {
		if doc.Identities[i].Name == name || (name == "" && len(doc.Identities) == 1) {
			found = &doc.Identities[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("config: no identity %q", name)
	}
	if len(found.SigningKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("config: identity %q has malformed signing key", found.Name)
	}
	return &comms.Identity{
		Name:       found.Name,
		SigningKey: ed25519.PrivateKey(found.SigningKey),
		NoiseKey: noise.DHKey{
			Private: found.NoisePrivateKey,
			Public:  found.NoisePublicKey,
		},
	}, nil
}

// AddIdentity stores a generated identity.
func (doc *Document) AddIdentity(identity *comms.Identity) {
	doc.Identities = append(doc.Identities, Identity{
		Name:            identity.Name,
		SigningKey:      identity.SigningKey,
		NoisePrivateKey: identity.NoiseKey.Private,
		NoisePublicKey:  identity.NoiseKey.Public,
	})
}

// Group looks up a stored group by name.
func (doc *Document) Group(name string) (*Group, error) {
	for i := range doc.Groups {
		if doc.Groups[i].Name == name || (name == "" && len(doc.Groups) == 1) {
			return &doc.Groups[i], nil
		}
	}
	return nil, fmt.Errorf("config: no group %q", name)
}

// Keys decodes the stored key material of a group.
func (g *Group) Keys() (*frost.KeyPackage, *frost.PublicKeyPackage, error) {
	suite, err := frost.SuiteByName(g.Suite)
	if err != nil {
		return nil, nil, err
	}
	keyPackage, err := frost.DecodeKeyPackage(suite, g.KeyPackage)
	if err != nil {
		return nil, nil, err
	}
	publicKeyPackage, err := frost.DecodePublicKeyPackage(suite, g.PublicKeyPackage)
	if err != nil {
		return nil, nil, err
	}
	return keyPackage, publicKeyPackage, nil
}

// Peers builds the comms peer list for this group, excluding self.
func (g *Group) Peers(self party.ID) []comms.Peer {
	peers := make([]comms.Peer, 0, len(g.Members))
	for _, member := range g.Members {
		if party.ID(member.Identifier) == self {
			continue
		}
		peers = append(peers, comms.Peer{
			Identifier: party.ID(member.Identifier),
			SigningKey: member.SigningKey,
			NoiseKey:   member.NoiseKey,
		})
	}
	return peers
}
