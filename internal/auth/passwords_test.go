package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordsHashAndVerify(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)

	h1, err := p.Hash("pw1")
	require.NoError(t, err)
	h2, err := p.Hash("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salt must differ per call")
	assert.NotContains(t, h1, "pw1")
	assert.True(t, p.Verify("pw1", h1))
	assert.True(t, p.Verify("pw1", h2))
	assert.False(t, p.Verify("wrong", h1))
	assert.False(t, p.Verify("pw1", "not-a-hash"))
}

func TestPasswordsRejectEmptySecret(t *testing.T) {
	_, err := Passwords{}.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestPasswordsDefaultCost(t *testing.T) {
	h, err := Passwords{}.Hash("pw1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
	assert.True(t, strings.HasPrefix(h, "$2a$"))
}
