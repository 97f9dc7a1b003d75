package crypto

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) CipherService {
	t.Helper()

	key, err := GenerateMasterKey()
	require.NoError(t, err)

	svc, err := NewCipherService(key)
	require.NoError(t, err)

	return svc
}

func TestGenerateMasterKey(t *testing.T) {
	first, err := GenerateMasterKey()
	require.NoError(t, err)
	require.Len(t, first, 32)

	second, err := GenerateMasterKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewCipherService_RejectsShortKey(t *testing.T) {
	_, err := NewCipherService([]byte("too-short"))
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := newTestCipher(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "token", plaintext: "tok_abc"},
		{name: "empty", plaintext: ""},
		{name: "unicode", plaintext: "пароль-🔑"},
		{name: "long", plaintext: string(make([]byte, 4096))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, iv, err := svc.Encrypt(tt.plaintext)
			require.NoError(t, err)
			require.NotEmpty(t, iv)

			got, err := svc.Decrypt(ct, iv)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	svc := newTestCipher(t)

	ct1, iv1, err := svc.Encrypt("same plaintext")
	require.NoError(t, err)
	ct2, iv2, err := svc.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestDecrypt_TamperedCiphertextFailsIntegrity(t *testing.T) {
	svc := newTestCipher(t)

	ct, iv, err := svc.Encrypt("tok_abc")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[0] ^= 0x01 // flip one bit
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = svc.Decrypt(tampered, iv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrity))
}

func TestDecrypt_WrongKeyFailsIntegrity(t *testing.T) {
	ct, iv, err := newTestCipher(t).Encrypt("tok_abc")
	require.NoError(t, err)

	other := newTestCipher(t)
	_, err = other.Decrypt(ct, iv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrity))
}

func TestDecrypt_BadInputs(t *testing.T) {
	svc := newTestCipher(t)

	_, err := svc.Decrypt("%%%not-base64%%%", "AAAAAAAAAAAAAAAA")
	assert.Error(t, err)

	_, err = svc.Decrypt("AAAA", "%%%not-base64%%%")
	assert.Error(t, err)

	// iv of the wrong length
	shortIV := base64.StdEncoding.EncodeToString([]byte("abc"))
	_, err = svc.Decrypt("AAAA", shortIV)
	assert.Error(t, err)
}

func TestSameMasterKey_SharesDataKey(t *testing.T) {
	key, err := GenerateMasterKey()
	require.NoError(t, err)

	a, err := NewCipherService(key)
	require.NoError(t, err)
	b, err := NewCipherService(key)
	require.NoError(t, err)

	ct, iv, err := a.Encrypt("persisted value")
	require.NoError(t, err)

	got, err := b.Decrypt(ct, iv)
	require.NoError(t, err)
	assert.Equal(t, "persisted value", got)
}
