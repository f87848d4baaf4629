package crypto

import (
	"testing"

	"github.com/rizesql/cas/internal/assert"
)

func TestDeriveKey(t *testing.T) {
	key := DeriveKey("secret", "salt", WithIterations(16))

	assert.Equal(t, len(key), 32)
	assert.Equal(t, key, DeriveKey("secret", "salt", WithIterations(16)))
}

func TestDeriveKey_Sensitivity(t *testing.T) {
	key := DeriveKey("secret", "salt", WithIterations(16))

	for _, other := range [][]byte{
		DeriveKey("other", "salt", WithIterations(16)),
		DeriveKey("secret", "pepper", WithIterations(16)),
		DeriveKey("secret", "salt", WithIterations(17)),
	} {
		if string(key) == string(other) {
			t.Error("derived keys must differ when any input differs")
		}
	}
}

func TestDeriveKey_KeySize(t *testing.T) {
	assert.Equal(t, len(DeriveKey("secret", "salt", WithIterations(16), WithKeySize(64))), 64)

	// Non-positive overrides fall back to the defaults.
	assert.Equal(t, len(DeriveKey("secret", "salt", WithIterations(16), WithKeySize(-1))), 32)
}
