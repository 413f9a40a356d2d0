package sign

import (
	"crypto/rand"
	"testing"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/frost/dealer"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSigning executes both rounds locally for the given signers and
// returns everything the coordinator ends up with.
func runSigning(t *testing.T, suite frost.Suite, keyPackages map[party.ID]*frost.KeyPackage, signers []party.ID, message []byte, randomizer *frost.Randomizer) (*SigningPackage, map[party.ID]*SignatureShare) {
	t.Helper()

	commitments := make(map[party.ID]*SigningCommitments, len(signers))
	nonces := make(map[party.ID]*SigningNonces, len(signers))
	for _, id := range signers {
		n, c, err := Commit(suite, keyPackages[id].SigningShare, rand.Reader)
		require.NoError(t, err)
		nonces[id] = n
		commitments[id] = c
	}

	pkg, err := NewSigningPackage(message, commitments)
	require.NoError(t, err)

	shares := make(map[party.ID]*SignatureShare, len(signers))
	for _, id := range signers {
		var share *SignatureShare
		if randomizer != nil {
			share, err = SignRandomized(pkg, nonces[id], keyPackages[id], randomizer)
		} else {
			share, err = Sign(pkg, nonces[id], keyPackages[id])
		}
		require.NoError(t, err)
		shares[id] = share
	}
	return pkg, shares
}

// Trusted-dealer keys, two of three signers, all suites: the aggregate
// must verify under the group key.
func TestSignEndToEnd(t *testing.T) {
	message := []byte{0xde, 0xad, 0xbe, 0xef}
	for _, suite := range frost.Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
			require.NoError(t, err)

			signers := []party.ID{1, 3}
			pkg, shares := runSigning(t, suite, keyPackages, signers, message, nil)

			signature, err := Aggregate(pkg, shares, publicKeyPackage)
			require.NoError(t, err)
			assert.NoError(t, publicKeyPackage.VerifyingKey.Verify(suite, message, signature))

			// and not under a different message
			assert.Error(t, publicKeyPackage.VerifyingKey.Verify(suite, []byte{0x01}, signature))
		})
	}
}

// A single signer below the threshold produces shares that are locally
// consistent but cannot interpolate the secret: aggregation fails with
// ErrInvalidAggregate.
func TestSignBelowThreshold(t *testing.T) {
	suite := frost.Ed25519Suite{}
	keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	n, c, err := Commit(suite, keyPackages[1].SigningShare, rand.Reader)
	require.NoError(t, err)
	pkg, err := NewSigningPackage([]byte{0xde, 0xad, 0xbe, 0xef}, map[party.ID]*SigningCommitments{1: c})
	require.NoError(t, err)

	// the participant refuses a package below the threshold
	_, err = Sign(pkg, n, keyPackages[1])
	assert.ErrorIs(t, err, frost.ErrInvalidSigningPackage)

	// a forced single-signer share still fails aggregation
	forced := keyPackages[1]
	forced.MinSigners = 1
	n2, c2, err := Commit(suite, forced.SigningShare, rand.Reader)
	require.NoError(t, err)
	pkg2, err := NewSigningPackage([]byte{0xde, 0xad, 0xbe, 0xef}, map[party.ID]*SigningCommitments{1: c2})
	require.NoError(t, err)
	share, err := Sign(pkg2, n2, forced)
	require.NoError(t, err)

	_, err = Aggregate(pkg2, map[party.ID]*SignatureShare{1: share}, publicKeyPackage)
	assert.ErrorIs(t, err, frost.ErrInvalidAggregate)
}

func TestAggregateIdentifiesFaultySigner(t *testing.T) {
	suite := frost.Ed25519Suite{}
	keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	signers := []party.ID{1, 2}
	pkg, shares := runSigning(t, suite, keyPackages, signers, []byte("msg"), nil)

	// corrupt signer 2's share
	shares[2].Share.Add(party.ID(1).Scalar(suite.Group()))

	_, err = Aggregate(pkg, shares, publicKeyPackage)
	var faulty *frost.InvalidSignatureShareError
	require.ErrorAs(t, err, &faulty)
	assert.Equal(t, party.ID(2), faulty.Culprit)
}

func TestNonceReuseRejected(t *testing.T) {
	suite := frost.Ed25519Suite{}
	keyPackages, _, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	commitments := make(map[party.ID]*SigningCommitments)
	nonces := make(map[party.ID]*SigningNonces)
	for _, id := range []party.ID{1, 2} {
		n, c, err := Commit(suite, keyPackages[id].SigningShare, rand.Reader)
		require.NoError(t, err)
		nonces[id] = n
		commitments[id] = c
	}
	pkg, err := NewSigningPackage([]byte("msg"), commitments)
	require.NoError(t, err)

	_, err = Sign(pkg, nonces[1], keyPackages[1])
	require.NoError(t, err)

	// the nonces were wiped; a second use must fail
	_, err = Sign(pkg, nonces[1], keyPackages[1])
	assert.ErrorIs(t, err, frost.ErrNonceReuse)
	assert.True(t, nonces[1].hiding.IsZero())
	assert.True(t, nonces[1].binding.IsZero())
}

func TestSignRejectsModifiedPackage(t *testing.T) {
	suite := frost.Ed25519Suite{}
	keyPackages, _, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	commitments := make(map[party.ID]*SigningCommitments)
	nonces := make(map[party.ID]*SigningNonces)
	for _, id := range []party.ID{1, 2} {
		n, c, err := Commit(suite, keyPackages[id].SigningShare, rand.Reader)
		require.NoError(t, err)
		nonces[id] = n
		commitments[id] = c
	}

	// the coordinator swaps participant 1's commitments for its own pair
	_, evil, err := Commit(suite, keyPackages[1].SigningShare, rand.Reader)
	require.NoError(t, err)
	pkg, err := NewSigningPackage([]byte("msg"), map[party.ID]*SigningCommitments{1: evil, 2: commitments[2]})
	require.NoError(t, err)

	_, err = Sign(pkg, nonces[1], keyPackages[1])
	assert.ErrorIs(t, err, frost.ErrInvalidSigningPackage)

	// a package omitting the signer entirely is rejected too
	pkgWithout, err := NewSigningPackage([]byte("msg"), map[party.ID]*SigningCommitments{2: commitments[2], 3: evil})
	require.NoError(t, err)
	_, err = Sign(pkgWithout, nonces[1], keyPackages[1])
	assert.ErrorIs(t, err, frost.ErrInvalidSigningPackage)
}

// Rerandomized FROST on RedPallas: the signature verifies under Y + ρ·B
// and not under Y; distinct randomizers give distinct signatures.
func TestSignRandomized(t *testing.T) {
	suite := frost.RedPallasSuite{}
	keyPackages, publicKeyPackage, err := dealer.Keygen(suite, 2, 3, rand.Reader)
	require.NoError(t, err)

	message := []byte("shielded spend")
	signers := []party.ID{1, 3}

	sign := func() (*frost.Randomizer, *frost.Signature) {
		commitments := make(map[party.ID]*SigningCommitments)
		nonces := make(map[party.ID]*SigningNonces)
		for _, id := range signers {
			n, c, err := Commit(suite, keyPackages[id].SigningShare, rand.Reader)
			require.NoError(t, err)
			nonces[id] = n
			commitments[id] = c
		}
		pkg, err := NewSigningPackage(message, commitments)
		require.NoError(t, err)
		randomizer, err := NewRandomizer(rand.Reader, suite, pkg)
		require.NoError(t, err)

		shares := make(map[party.ID]*SignatureShare)
		for _, id := range signers {
			share, err := SignRandomized(pkg, nonces[id], keyPackages[id], randomizer)
			require.NoError(t, err)
			shares[id] = share
		}
		signature, err := AggregateRandomized(pkg, shares, publicKeyPackage, randomizer)
		require.NoError(t, err)
		return randomizer, signature
	}

	randomizer, signature := sign()
	randomizedKey := randomizer.RandomizeKey(publicKeyPackage.VerifyingKey)
	assert.NoError(t, randomizedKey.Verify(suite, message, signature))
	assert.ErrorIs(t, publicKeyPackage.VerifyingKey.Verify(suite, message, signature),
		frost.ErrInvalidSignature)

	// two runs with distinct randomizers give distinct signatures
	_, second := sign()
	first, err := signature.Encode()
	require.NoError(t, err)
	again, err := second.Encode()
	require.NoError(t, err)
	assert.NotEqual(t, first, again)
}

func TestWireRoundTrips(t *testing.T) {
	for _, suite := range frost.Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			keyPackages, _, err := dealer.Keygen(suite, 2, 3, rand.Reader)
			require.NoError(t, err)

			_, commitments, err := Commit(suite, keyPackages[1].SigningShare, rand.Reader)
			require.NoError(t, err)
			encoded, err := commitments.Encode(suite)
			require.NoError(t, err)
			decoded, err := DecodeSigningCommitments(suite, encoded)
			require.NoError(t, err)
			assert.True(t, commitments.Hiding.Equal(decoded.Hiding))
			assert.True(t, commitments.Binding.Equal(decoded.Binding))

			pkg, shares := runSigning(t, suite, keyPackages, []party.ID{1, 2}, []byte("msg"), nil)
			encodedPackage, err := pkg.Encode(suite)
			require.NoError(t, err)
			decodedPackage, err := DecodeSigningPackage(suite, encodedPackage)
			require.NoError(t, err)
			assert.Equal(t, pkg.Message, decodedPackage.Message)
			assert.Equal(t, pkg.SignerIDs(), decodedPackage.SignerIDs())

			encodedShare, err := shares[1].Encode(suite)
			require.NoError(t, err)
			decodedShare, err := DecodeSignatureShare(suite, encodedShare)
			require.NoError(t, err)
			assert.True(t, shares[1].Share.Equal(decodedShare.Share))
		})
	}
}

func TestWireRejectsForeignSuite(t *testing.T) {
	ed := frost.Ed25519Suite{}
	keyPackages, _, err := dealer.Keygen(ed, 2, 3, rand.Reader)
	require.NoError(t, err)
	_, commitments, err := Commit(ed, keyPackages[1].SigningShare, rand.Reader)
	require.NoError(t, err)
	encoded, err := commitments.Encode(ed)
	require.NoError(t, err)

	_, err = DecodeSigningCommitments(frost.RedPallasSuite{}, encoded)
	assert.ErrorIs(t, err, frost.ErrWrongCiphersuite)
}
