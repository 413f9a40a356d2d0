package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumIsDeterministicAndDomainSeparated(t *testing.T) {
	h1 := New()
	require.NoError(t, h1.WriteAny([]byte("payload")))
	h2 := New()
	require.NoError(t, h2.WriteAny([]byte("payload")))
	assert.Equal(t, h1.Sum(), h2.Sum())

	// same bytes under a different domain hash differently
	h3 := New()
	require.NoError(t, h3.WriteAny(&BytesWithDomain{TheDomain: "other", Bytes: []byte("payload")}))
	assert.NotEqual(t, h1.Sum(), h3.Sum())

	// adjacent writes do not collapse: ("ab","c") != ("a","bc")
	h4 := New()
	require.NoError(t, h4.WriteAny([]byte("ab"), []byte("c")))
	h5 := New()
	require.NoError(t, h5.WriteAny([]byte("a"), []byte("bc")))
	assert.NotEqual(t, h4.Sum(), h5.Sum())
}

func TestCloneForks(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteAny([]byte("shared prefix")))
	fork := h.Clone()
	require.NoError(t, fork.WriteAny([]byte("branch")))
	assert.NotEqual(t, h.Sum(), fork.Sum())
}

func TestCommitDecommit(t *testing.T) {
	h := New()
	commitment, decommitment, err := h.Commit([]byte("value"))
	require.NoError(t, err)

	assert.True(t, h.Decommit(commitment, decommitment, []byte("value")))
	assert.False(t, h.Decommit(commitment, decommitment, []byte("other")))
	assert.False(t, h.Decommit(commitment, make(Decommitment, SecParamBytes), []byte("value")))

	// commitments are hiding through the nonce: same value, new nonce
	commitment2, _, err := h.Commit([]byte("value"))
	require.NoError(t, err)
	assert.NotEqual(t, commitment, commitment2)
}
