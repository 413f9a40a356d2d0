package dkg

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/quorumsig/frost/pkg/frost"
	frostsign "github.com/quorumsig/frost/pkg/frost/sign"
	"github.com/quorumsig/frost/pkg/math/sample"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDKG executes all three parts for every participant in-process and
// returns the per-participant outputs.
func runDKG(t *testing.T, suite frost.Suite, ids party.IDSlice, threshold uint16) (map[party.ID]*frost.KeyPackage, map[party.ID]*frost.PublicKeyPackage) {
	t.Helper()
	n := uint16(len(ids))

	secrets1 := make(map[party.ID]*Round1SecretPackage, n)
	round1 := make(map[party.ID]*Round1Package, n)
	for _, id := range ids {
		secret, public, err := Part1(suite, id, threshold, n)
		require.NoError(t, err)
		secrets1[id] = secret
		round1[id] = public
	}

	secrets2 := make(map[party.ID]*Round2SecretPackage, n)
	round2 := make(map[party.ID]map[party.ID]*Round2Package, n)
	for _, id := range ids {
		received := make(map[party.ID]*Round1Package, n-1)
		for _, from := range ids {
			if from != id {
				received[from] = round1[from]
			}
		}
		secret, shares, err := Part2(secrets1[id], received)
		require.NoError(t, err)
		secrets2[id] = secret
		round2[id] = shares
	}

	keyPackages := make(map[party.ID]*frost.KeyPackage, n)
	publicKeyPackages := make(map[party.ID]*frost.PublicKeyPackage, n)
	for _, id := range ids {
		receivedRound1 := make(map[party.ID]*Round1Package, n-1)
		receivedShares := make(map[party.ID]*Round2Package, n-1)
		for _, from := range ids {
			if from != id {
				receivedRound1[from] = round1[from]
				receivedShares[from] = round2[from][id]
			}
		}
		keyPackage, publicKeyPackage, err := Part3(secrets2[id], receivedRound1, receivedShares)
		require.NoError(t, err)
		keyPackages[id] = keyPackage
		publicKeyPackages[id] = publicKeyPackage
	}
	return keyPackages, publicKeyPackages
}

// Five participants, threshold three: every honest participant derives a
// byte-identical public key package, and a threshold subset can sign.
func TestDKGEndToEnd(t *testing.T) {
	for _, suite := range frost.Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			ids := party.NewIDSlice([]party.ID{1, 2, 3, 4, 5})
			keyPackages, publicKeyPackages := runDKG(t, suite, ids, 3)

			reference, err := publicKeyPackages[1].Encode()
			require.NoError(t, err)
			for _, id := range ids[1:] {
				encoded, err := publicKeyPackages[id].Encode()
				require.NoError(t, err)
				assert.True(t, bytes.Equal(reference, encoded),
					"public key package of %s differs", id)
			}

			// sign with {2, 3, 5} on a one-byte message
			message := []byte{0x01}
			signers := []party.ID{2, 3, 5}
			commitments := make(map[party.ID]*frostsign.SigningCommitments)
			nonces := make(map[party.ID]*frostsign.SigningNonces)
			for _, id := range signers {
				nonce, commitment, err := frostsign.Commit(suite, keyPackages[id].SigningShare, rand.Reader)
				require.NoError(t, err)
				nonces[id] = nonce
				commitments[id] = commitment
			}
			pkg, err := frostsign.NewSigningPackage(message, commitments)
			require.NoError(t, err)
			shares := make(map[party.ID]*frostsign.SignatureShare)
			for _, id := range signers {
				share, err := frostsign.Sign(pkg, nonces[id], keyPackages[id])
				require.NoError(t, err)
				shares[id] = share
			}
			signature, err := frostsign.Aggregate(pkg, shares, publicKeyPackages[1])
			require.NoError(t, err)
			assert.NoError(t, publicKeyPackages[1].VerifyingKey.Verify(suite, message, signature))
		})
	}
}

// A participant delivering a share inconsistent with their commitment is
// identified by every receiver.
func TestDKGInvalidShare(t *testing.T) {
	suite := frost.Ed25519Suite{}
	ids := party.NewIDSlice([]party.ID{1, 2, 3, 4, 5})
	n := uint16(len(ids))

	secrets1 := make(map[party.ID]*Round1SecretPackage)
	round1 := make(map[party.ID]*Round1Package)
	for _, id := range ids {
		secret, public, err := Part1(suite, id, 3, n)
		require.NoError(t, err)
		secrets1[id] = secret
		round1[id] = public
	}

	secrets2 := make(map[party.ID]*Round2SecretPackage)
	round2 := make(map[party.ID]map[party.ID]*Round2Package)
	for _, id := range ids {
		received := make(map[party.ID]*Round1Package)
		for _, from := range ids {
			if from != id {
				received[from] = round1[from]
			}
		}
		secret, shares, err := Part2(secrets1[id], received)
		require.NoError(t, err)
		secrets2[id] = secret
		round2[id] = shares
	}

	// participant 4 garbles every share it deals
	for _, pkg := range round2[4] {
		pkg.SigningShare = sample.ScalarNonZero(rand.Reader, suite.Group())
	}

	for _, id := range ids {
		if id == 4 {
			continue
		}
		receivedRound1 := make(map[party.ID]*Round1Package)
		receivedShares := make(map[party.ID]*Round2Package)
		for _, from := range ids {
			if from != id {
				receivedRound1[from] = round1[from]
				receivedShares[from] = round2[from][id]
			}
		}
		_, _, err := Part3(secrets2[id], receivedRound1, receivedShares)
		var invalid *frost.InvalidShareError
		require.ErrorAs(t, err, &invalid, "participant %s should reject", id)
		assert.Equal(t, party.ID(4), invalid.Culprit)
	}
}

func TestDKGInvalidProofOfKnowledge(t *testing.T) {
	suite := frost.Ed25519Suite{}
	ids := party.NewIDSlice([]party.ID{1, 2, 3})

	secrets := make(map[party.ID]*Round1SecretPackage)
	round1 := make(map[party.ID]*Round1Package)
	for _, id := range ids {
		secret, public, err := Part1(suite, id, 2, 3)
		require.NoError(t, err)
		secrets[id] = secret
		round1[id] = public
	}

	// participant 2 replaces its proof response
	round1[2].ProofZ = sample.ScalarNonZero(rand.Reader, suite.Group())

	_, _, err := Part2(secrets[1], map[party.ID]*Round1Package{2: round1[2], 3: round1[3]})
	var invalid *frost.InvalidProofOfKnowledgeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, party.ID(2), invalid.Culprit)
}

func TestDKGInvalidThreshold(t *testing.T) {
	suite := frost.Ed25519Suite{}
	_, _, err := Part1(suite, 1, 1, 3)
	assert.ErrorIs(t, err, frost.ErrInvalidThreshold)
	_, _, err = Part1(suite, 1, 4, 3)
	assert.ErrorIs(t, err, frost.ErrInvalidThreshold)
}

func TestDKGPartialRound1SetLeavesStateUsable(t *testing.T) {
	suite := frost.Ed25519Suite{}
	secret, _, err := Part1(suite, 1, 2, 3)
	require.NoError(t, err)
	_, other, err := Part1(suite, 2, 2, 3)
	require.NoError(t, err)

	// only one of two expected packages: state must stay intact
	_, _, err = Part2(secret, map[party.ID]*Round1Package{2: other})
	require.ErrorIs(t, err, frost.ErrInvalidArgument)

	_, third, err := Part1(suite, 3, 2, 3)
	require.NoError(t, err)
	_, _, err = Part2(secret, map[party.ID]*Round1Package{2: other, 3: third})
	assert.NoError(t, err)
}

func TestPackageWireRoundTrip(t *testing.T) {
	suite := frost.RedPallasSuite{}
	secret, public, err := Part1(suite, 7, 2, 3)
	require.NoError(t, err)

	encoded, err := public.Encode(suite)
	require.NoError(t, err)
	decoded, err := DecodeRound1Package(suite, encoded)
	require.NoError(t, err)
	assert.True(t, public.Commitment.Equal(decoded.Commitment))
	assert.True(t, public.ProofR.Equal(decoded.ProofR))
	assert.True(t, public.ProofZ.Equal(decoded.ProofZ))

	_, err = DecodeRound1Package(frost.Ed25519Suite{}, encoded)
	assert.ErrorIs(t, err, frost.ErrWrongCiphersuite)

	encodedSecret, err := secret.Encode()
	require.NoError(t, err)
	restored, err := DecodeRound1SecretPackage(suite, encodedSecret)
	require.NoError(t, err)
	assert.Equal(t, secret.identifier, restored.identifier)
	assert.True(t, restored.commitment.Equal(secret.commitment))
}
