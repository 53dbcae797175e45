package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword("s3cret-pass", h))
	assert.False(t, CheckPassword("wrong", h))
	assert.False(t, CheckPassword("anything", ""))
}

func TestNumericCode(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]{3}$`)
	for i := 0; i < 200; i++ {
		c, err := NumericCode(4)
		require.NoError(t, err)
		assert.Regexp(t, re, c)
	}
	_, err := NumericCode(0)
	assert.Error(t, err)
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(16)
	require.NoError(t, err)
	b, err := RandomToken(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
