package keys

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		key, err := generateKey(rand.Reader, DefaultKeyLength)
		require.NoError(t, err)
		assert.True(t, wellFormed(key, DefaultKeyLength), "malformed key %q", key)
	}
}

func TestGenerateKeyRejectsBiasedBytes(t *testing.T) {
	// 255 is above the rejection threshold and must be skipped; 0 and 37 map
	// to 'A' and 'B'.
	src := bytes.NewReader([]byte{255, 0, 37, 255})
	key, err := generateKey(src, 2)
	require.NoError(t, err)
	assert.Equal(t, "AB", key)
}

func TestGenerateKeyErrors(t *testing.T) {
	_, err := generateKey(rand.Reader, 0)
	require.Error(t, err)
	_, err = generateKey(bytes.NewReader([]byte{1}), 4)
	require.Error(t, err)
}

func TestNormalizeAndWellFormed(t *testing.T) {
	assert.Equal(t, "ABC123", Normalize("  abc123\n"))
	assert.True(t, wellFormed("AB12", 4))
	assert.False(t, wellFormed("ab12", 4))
	assert.False(t, wellFormed("AB1", 4))
	assert.False(t, wellFormed("AB-1", 4))
	assert.True(t, wellFormed("ANYLENGTH9", 0))
	assert.False(t, wellFormed("AB-1", 0))
	assert.False(t, wellFormed("", 0))
}
