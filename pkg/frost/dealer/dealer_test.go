package dealer

import (
	"crypto/rand"
	"testing"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/polynomial"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenProducesConsistentShares(t *testing.T) {
	for _, suite := range frost.Suites() {
		t.Run(suite.Name(), func(t *testing.T) {
			keyPackages, publicKeyPackage, err := Keygen(suite, 2, 3, rand.Reader)
			require.NoError(t, err)
			require.Len(t, keyPackages, 3)

			group := suite.Group()
			for id, kp := range keyPackages {
				assert.Equal(t, id, kp.Identifier)
				// the verifying share is the share's public image
				assert.True(t, kp.SigningShare.VerifyingShare().Equal(kp.VerifyingShare))
				assert.True(t, kp.VerifyingShare.Equal(publicKeyPackage.VerifyingShares[id]))
				assert.True(t, kp.VerifyingKey.Equal(publicKeyPackage.VerifyingKey))
			}

			// any 2-subset interpolates to the group key
			for _, subset := range []party.IDSlice{{1, 2}, {1, 3}, {2, 3}} {
				lambdas := polynomial.Lagrange(group, subset)
				interpolated := group.NewScalar()
				for _, id := range subset {
					interpolated.Add(group.NewScalar().Set(lambdas[id]).Mul(keyPackages[id].SigningShare.Scalar()))
				}
				assert.True(t, interpolated.ActOnBase().Equal(publicKeyPackage.VerifyingKey.Point()),
					"subset %v does not interpolate to the verifying key", subset)
			}
		})
	}
}

func TestKeygenInvalidThreshold(t *testing.T) {
	suite := frost.Ed25519Suite{}
	_, _, err := Keygen(suite, 1, 3, rand.Reader)
	assert.ErrorIs(t, err, frost.ErrInvalidThreshold)

	_, _, err = Keygen(suite, 4, 3, rand.Reader)
	assert.ErrorIs(t, err, frost.ErrInvalidThreshold)
}

func TestKeygenWithIdentifiers(t *testing.T) {
	suite := frost.RedPallasSuite{}
	ids := party.NewIDSlice([]party.ID{10, 20, 30, 40})
	keyPackages, publicKeyPackage, err := KeygenWithIdentifiers(suite, 3, ids, rand.Reader)
	require.NoError(t, err)
	require.Len(t, keyPackages, 4)
	assert.Equal(t, uint16(3), publicKeyPackage.MinSigners)
	assert.Equal(t, ids, publicKeyPackage.SignerIDs())
}

func TestKeygenRejectsZeroIdentifier(t *testing.T) {
	suite := frost.Ed25519Suite{}
	_, _, err := KeygenWithIdentifiers(suite, 2, party.IDSlice{0, 1, 2}, rand.Reader)
	assert.ErrorIs(t, err, frost.ErrInvalidArgument)
}
