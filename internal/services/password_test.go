package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("Sup3rSecret")
	assert.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, hasher.Verify("Sup3rSecret", hash))
	assert.False(t, hasher.Verify("sup3rsecret", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestPasswordHasher_DistinctSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("Sup3rSecret")
	assert.NoError(t, err)
	second, err := hasher.Hash("Sup3rSecret")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}
