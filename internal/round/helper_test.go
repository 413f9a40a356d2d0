package round

import (
	"testing"

	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo(selfID party.ID) Info {
	return Info{
		ProtocolID:       "test/protocol",
		FinalRoundNumber: 3,
		SelfID:           selfID,
		PartyIDs:         []party.ID{1, 2, 3},
		Threshold:        2,
		Suite:            frost.Ed25519Suite{},
	}
}

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(testInfo(1), nil)
	require.NoError(t, err)

	// self must participate
	_, err = NewSession(testInfo(9), nil)
	assert.Error(t, err)

	// zero identifiers are rejected
	bad := testInfo(1)
	bad.PartyIDs = []party.ID{0, 1}
	_, err = NewSession(bad, nil)
	assert.Error(t, err)

	// threshold above n is rejected
	bad = testInfo(1)
	bad.Threshold = 4
	_, err = NewSession(bad, nil)
	assert.Error(t, err)
}

func TestSSIDBindsSessionParameters(t *testing.T) {
	a, err := NewSession(testInfo(1), nil)
	require.NoError(t, err)
	b, err := NewSession(testInfo(1), nil)
	require.NoError(t, err)
	assert.Equal(t, a.SSID(), b.SSID())

	// a different threshold yields a different SSID
	other := testInfo(1)
	other.Threshold = 3
	c, err := NewSession(other, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.SSID(), c.SSID())

	// an explicit session id separates executions
	d, err := NewSession(testInfo(1), []byte("run-2"))
	require.NoError(t, err)
	assert.NotEqual(t, a.SSID(), d.SSID())
}

func TestHelperAccessors(t *testing.T) {
	h, err := NewSession(testInfo(2), nil)
	require.NoError(t, err)
	assert.Equal(t, party.ID(2), h.SelfID())
	assert.Equal(t, party.IDSlice{1, 2, 3}, h.PartyIDs())
	assert.Equal(t, party.IDSlice{1, 3}, h.OtherPartyIDs())
	assert.Equal(t, 3, h.N())
	assert.Equal(t, uint16(2), h.Threshold())
}
