package comms

import (
	"bytes"
	"context"
	"crypto/rand"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/frost/dealer"
	"github.com/quorumsig/frost/pkg/party"
	protodkg "github.com/quorumsig/frost/protocols/dkg"
	"github.com/quorumsig/frost/server"
)

const testPoll = 10 * time.Millisecond

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.New(server.Config{Logger: zerolog.Nop()})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func loggedInClient(t *testing.T, ctx context.Context, url string, identity *Identity) *Client {
	t.Helper()
	client := NewClient(url)
	require.NoError(t, client.Login(ctx, identity))
	return client
}

func peerOf(identity *Identity, id party.ID) Peer {
	return Peer{
		Identifier: id,
		SigningKey: identity.PublicSigningKey(),
		NoiseKey:   identity.PublicNoiseKey(),
	}
}

// Full signing attempt through the real HTTP surface: trusted-dealer keys,
// a coordinator and two participants, all traffic Noise-sealed.
func TestSigningOverServer(t *testing.T) {
	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	suite := frost.Ed25519Suite{}
	keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	coordinatorIdentity, err := GenerateIdentity(rand.Reader, "coordinator")
	require.NoError(t, err)
	identities := map[party.ID]*Identity{}
	for _, id := range []party.ID{1, 3} {
		identity, err := GenerateIdentity(rand.Reader, "signer")
		require.NoError(t, err)
		identities[id] = identity
	}

	message := []byte{0xde, 0xad, 0xbe, 0xef}
	group, groupCtx := errgroup.WithContext(ctx)

	for _, id := range []party.ID{1, 3} {
		id := id
		group.Go(func() error {
			client := loggedInClient(t, groupCtx, ts.URL, identities[id])
			return RunParticipant(groupCtx, ParticipantConfig{
				Client:       client,
				Identity:     identities[id],
				KeyPackage:   keyPackages[id],
				Coordinator:  peerOf(coordinatorIdentity, 0),
				PollInterval: testPoll,
			})
		})
	}

	var signature *frost.Signature
	group.Go(func() error {
		client := loggedInClient(t, groupCtx, ts.URL, coordinatorIdentity)
		var err error
		signature, err = RunCoordinator(groupCtx, SigningConfig{
			Client:           client,
			Identity:         coordinatorIdentity,
			PublicKeyPackage: publicKeyPackage,
			Signers:          []Peer{peerOf(identities[1], 1), peerOf(identities[3], 3)},
			Message:          message,
			PollInterval:     testPoll,
		})
		return err
	})

	require.NoError(t, group.Wait())
	require.NotNil(t, signature)
	assert.NoError(t, publicKeyPackage.VerifyingKey.Verify(suite, message, signature))
}

// Rerandomized signing on RedPallas through the same transport.
func TestRandomizedSigningOverServer(t *testing.T) {
	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	suite := frost.RedPallasSuite{}
	keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	coordinatorIdentity, err := GenerateIdentity(rand.Reader, "coordinator")
	require.NoError(t, err)
	identities := map[party.ID]*Identity{}
	for _, id := range []party.ID{2, 3} {
		identity, err := GenerateIdentity(rand.Reader, "signer")
		require.NoError(t, err)
		identities[id] = identity
	}

	message := []byte("orchard spend auth")
	group, groupCtx := errgroup.WithContext(ctx)
	for _, id := range []party.ID{2, 3} {
		id := id
		group.Go(func() error {
			client := loggedInClient(t, groupCtx, ts.URL, identities[id])
			return RunParticipant(groupCtx, ParticipantConfig{
				Client:       client,
				Identity:     identities[id],
				KeyPackage:   keyPackages[id],
				Coordinator:  peerOf(coordinatorIdentity, 0),
				PollInterval: testPoll,
			})
		})
	}

	var signature *frost.Signature
	group.Go(func() error {
		client := loggedInClient(t, groupCtx, ts.URL, coordinatorIdentity)
		var err error
		signature, err = RunCoordinator(groupCtx, SigningConfig{
			Client:           client,
			Identity:         coordinatorIdentity,
			PublicKeyPackage: publicKeyPackage,
			Signers:          []Peer{peerOf(identities[2], 2), peerOf(identities[3], 3)},
			Message:          message,
			Randomized:       true,
			PollInterval:     testPoll,
		})
		return err
	})

	require.NoError(t, group.Wait())
	require.NotNil(t, signature)
	// the rerandomized signature does not verify under the group key
	assert.Error(t, publicKeyPackage.VerifyingKey.Verify(suite, message, signature))
}

// Distributed key generation across three parties over the real server:
// everyone ends with identical public key packages.
func TestDKGOverServer(t *testing.T) {
	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	suite := frost.Ed25519Suite{}
	ids := []party.ID{1, 2, 3}
	identities := map[party.ID]*Identity{}
	for _, id := range ids {
		identity, err := GenerateIdentity(rand.Reader, "participant")
		require.NoError(t, err)
		identities[id] = identity
	}

	results := make(map[party.ID]*protodkg.Result, len(ids))
	var resultsMtx sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			client := loggedInClient(t, groupCtx, ts.URL, identities[id])
			var peers []Peer
			for _, other := range ids {
				if other != id {
					peers = append(peers, peerOf(identities[other], other))
				}
			}
			result, err := RunDKG(groupCtx, DKGConfig{
				Client:        client,
				Identity:      identities[id],
				Suite:         suite,
				SelfID:        id,
				Threshold:     2,
				Peers:         peers,
				CreateSession: i == 0,
				PollInterval:  testPoll,
			})
			if err != nil {
				return err
			}
			resultsMtx.Lock()
			results[id] = result
			resultsMtx.Unlock()
			return nil
		})
	}
	require.NoError(t, group.Wait())

	reference, err := results[1].PublicKeyPackage.Encode()
	require.NoError(t, err)
	for _, id := range ids[1:] {
		encoded, err := results[id].PublicKeyPackage.Encode()
		require.NoError(t, err)
		assert.True(t, bytes.Equal(reference, encoded))
	}
}
