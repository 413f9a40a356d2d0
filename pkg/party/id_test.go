package party

import (
	"testing"

	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSliceSorts(t *testing.T) {
	ids := NewIDSlice([]ID{5, 1, 3})
	assert.Equal(t, IDSlice{1, 3, 5}, ids)
	assert.True(t, ids.Valid())

	assert.True(t, ids.Contains(3))
	assert.False(t, ids.Contains(2))

	assert.Equal(t, IDSlice{1, 5}, ids.Remove(3))
}

func TestIDSliceInvalid(t *testing.T) {
	assert.False(t, NewIDSlice([]ID{1, 1, 2}).Valid(), "duplicates")
	assert.False(t, NewIDSlice([]ID{0, 1}).Valid(), "zero id")
}

func TestIDScalar(t *testing.T) {
	group := curve.Ed25519{}
	three := ID(3).Scalar(group)
	sum := group.NewScalar().Add(ID(1).Scalar(group)).Add(ID(2).Scalar(group))
	assert.True(t, three.Equal(sum))
	assert.False(t, three.IsZero())
}

func TestIDRoundTrip(t *testing.T) {
	id := ID(517)
	parsed, err := FromString(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, id, FromBytes(id.Bytes()))
}
