package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewCredentialEncryptor("passphrase")
	require.NoError(t, err)

	for _, plaintext := range []string{"shpat_abc123", "", "sécrét-avec-accents"} {
		encrypted, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := enc.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	enc, err := NewCredentialEncryptor("passphrase")
	require.NoError(t, err)

	first, err := enc.Encrypt("secret")
	require.NoError(t, err)
	second, err := enc.Encrypt("secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	enc, err := NewCredentialEncryptor("passphrase")
	require.NoError(t, err)
	other, err := NewCredentialEncryptor("different")
	require.NoError(t, err)

	encrypted, err := enc.Encrypt("secret")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	enc, err := NewCredentialEncryptor("passphrase")
	require.NoError(t, err)

	_, err = enc.Decrypt("not base64!!")
	assert.Error(t, err)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestEmptyPassphraseRejected(t *testing.T) {
	_, err := NewCredentialEncryptor("")
	assert.Error(t, err)
}
