package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordClampsCost(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MaxCost + 1} {
		hash, err := HashPassword("secret", cost)
		require.NoError(t, err)
		got, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, got)
	}

	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	got, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, got)

	assert.NoError(t, ComparePassword(hash, "secret"))
	assert.Error(t, ComparePassword(hash, "Secret"))
}

func TestDecoyUsesConfiguredCost(t *testing.T) {
	d := NewDecoy(bcrypt.MinCost)
	d.Compare("anything")
	d.Compare("anything else")

	got, err := bcrypt.Cost([]byte(d.hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, got)
}
