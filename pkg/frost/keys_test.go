package frost

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/sample"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPackage(t *testing.T, suite Suite) *KeyPackage {
	t.Helper()
	group := suite.Group()
	share := sample.ScalarNonZero(rand.Reader, group)
	secret := sample.ScalarNonZero(rand.Reader, group)
	return &KeyPackage{
		Suite:          suite,
		Identifier:     3,
		SigningShare:   NewSigningShare(share),
		VerifyingShare: share.ActOnBase(),
		VerifyingKey:   NewVerifyingKey(secret.ActOnBase()),
		MinSigners:     2,
		MaxSigners:     5,
	}
}

func testPublicKeyPackage(t *testing.T, suite Suite) *PublicKeyPackage {
	t.Helper()
	group := suite.Group()
	shares := make(map[party.ID]curve.Point)
	for id := party.ID(1); id <= 5; id++ {
		shares[id] = sample.ScalarNonZero(rand.Reader, group).ActOnBase()
	}
	return &PublicKeyPackage{
		Suite:           suite,
		VerifyingShares: shares,
		VerifyingKey:    NewVerifyingKey(sample.ScalarNonZero(rand.Reader, group).ActOnBase()),
		MinSigners:      2,
	}
}

func TestKeyPackageRoundTrip(t *testing.T) {
	for _, suite := range Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			kp := testKeyPackage(t, suite)
			encoded, err := kp.Encode()
			require.NoError(t, err)

			decoded, err := DecodeKeyPackage(suite, encoded)
			require.NoError(t, err)
			assert.Equal(t, kp.Identifier, decoded.Identifier)
			assert.True(t, kp.SigningShare.Equal(decoded.SigningShare))
			assert.True(t, kp.VerifyingShare.Equal(decoded.VerifyingShare))
			assert.True(t, kp.VerifyingKey.Equal(decoded.VerifyingKey))
			assert.Equal(t, kp.MinSigners, decoded.MinSigners)
			assert.Equal(t, kp.MaxSigners, decoded.MaxSigners)

			// the encoding is stable
			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, encoded, again)
		})
	}
}

func TestPublicKeyPackageRoundTrip(t *testing.T) {
	for _, suite := range Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			pkp := testPublicKeyPackage(t, suite)
			encoded, err := pkp.Encode()
			require.NoError(t, err)

			decoded, err := DecodePublicKeyPackage(suite, encoded)
			require.NoError(t, err)
			assert.True(t, pkp.VerifyingKey.Equal(decoded.VerifyingKey))
			assert.Equal(t, pkp.MinSigners, decoded.MinSigners)
			require.Len(t, decoded.VerifyingShares, len(pkp.VerifyingShares))
			for id, share := range pkp.VerifyingShares {
				assert.True(t, share.Equal(decoded.VerifyingShares[id]))
			}

			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, encoded, again)
		})
	}
}

func TestCrossSuiteConfusionRejected(t *testing.T) {
	ed := Ed25519Suite{}
	kp := testKeyPackage(t, ed)
	encoded, err := kp.Encode()
	require.NoError(t, err)

	_, err = DecodeKeyPackage(RedPallasSuite{}, encoded)
	assert.ErrorIs(t, err, ErrWrongCiphersuite)

	pkp := testPublicKeyPackage(t, ed)
	encodedPublic, err := pkp.Encode()
	require.NoError(t, err)
	_, err = DecodePublicKeyPackage(Secp256k1Suite{}, encodedPublic)
	assert.ErrorIs(t, err, ErrWrongCiphersuite)
}

func TestDecodeRejectsTruncatedAndTrailing(t *testing.T) {
	suite := Ed25519Suite{}
	kp := testKeyPackage(t, suite)
	encoded, err := kp.Encode()
	require.NoError(t, err)

	_, err = DecodeKeyPackage(suite, encoded[:len(encoded)-3])
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	_, err = DecodeKeyPackage(suite, append(encoded, 0x00))
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestSignatureRoundTrip(t *testing.T) {
	for _, suite := range Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			group := suite.Group()
			sig := &Signature{
				R: sample.ScalarNonZero(rand.Reader, group).ActOnBase(),
				Z: sample.Scalar(rand.Reader, group),
			}
			encoded, err := sig.Encode()
			require.NoError(t, err)

			decoded, err := DecodeSignature(suite, encoded)
			require.NoError(t, err)
			assert.True(t, sig.R.Equal(decoded.R))
			assert.True(t, sig.Z.Equal(decoded.Z))
		})
	}
}

// TestEd25519ChallengeCompatibility checks the suite's challenge and
// verification equation against the first RFC 8032 test vector: signatures
// produced by this suite must verify as standard Ed25519.
func TestEd25519ChallengeCompatibility(t *testing.T) {
	suite := Ed25519Suite{}
	publicKey, err := hex.DecodeString("d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a")
	require.NoError(t, err)
	signature, err := hex.DecodeString(
		"e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e06522490155" +
			"5fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b")
	require.NoError(t, err)

	point := suite.Group().NewPoint()
	require.NoError(t, point.UnmarshalBinary(publicKey))
	sig, err := DecodeSignature(suite, signature)
	require.NoError(t, err)

	key := NewVerifyingKey(point)
	assert.NoError(t, key.Verify(suite, nil, sig))
	assert.ErrorIs(t, key.Verify(suite, []byte("wrong message"), sig), ErrInvalidSignature)
}

func TestSigningShareRedacted(t *testing.T) {
	share := NewSigningShare(sample.ScalarNonZero(rand.Reader, curve.Ed25519{}))
	assert.NotContains(t, share.String(), "value")
	assert.Contains(t, share.String(), "REDACTED")
}
