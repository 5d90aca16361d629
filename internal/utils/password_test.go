package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pw", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pw"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "s3cret-pw"))
}
