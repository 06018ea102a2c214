package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64Unique(t *testing.T) {
	a := UUIDint64()
	b := UUIDint64()
	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
}

func TestRandomToken(t *testing.T) {
	tok := RandomToken(16)
	assert.Len(t, tok, 16)
	assert.NotEqual(t, tok, RandomToken(16))
}

func TestSha256HashWithSalt(t *testing.T) {
	h := Sha256HashWithSalt("evt-1", "salt-a")
	assert.Len(t, h, 64)
	assert.Equal(t, h, Sha256HashWithSalt("evt-1", "salt-a"))
	assert.NotEqual(t, h, Sha256HashWithSalt("evt-1", "salt-b"))
	assert.NotEqual(t, h, Sha256HashWithSalt("evt-2", "salt-a"))
}

func TestIsEmptyOrNA(t *testing.T) {
	assert.True(t, IsEmptyOrNA(""))
	assert.True(t, IsEmptyOrNA("   "))
	assert.True(t, IsEmptyOrNA(NA))
	assert.False(t, IsEmptyOrNA("https://hooks.example.org"))
}
