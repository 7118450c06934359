package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptorRoundTrip(t *testing.T) {
	t.Setenv("INVOICEWA_ENABLE_ENCRYPTION", "true")
	t.Setenv("INVOICEWA_ENCRYPTION_SECRET", "test-secret-key-that-is-long-enough-123")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	plaintext := "6281234567890"
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptorShortSecret(t *testing.T) {
	t.Setenv("INVOICEWA_ENABLE_ENCRYPTION", "true")
	t.Setenv("INVOICEWA_ENCRYPTION_SECRET", "too-short")

	_, err := NewEncryptor()
	assert.Error(t, err)
}

func TestEncryptIfEnabledPassthrough(t *testing.T) {
	t.Setenv("INVOICEWA_ENABLE_ENCRYPTION", "false")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	out, err := enc.EncryptIfEnabled("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	back, err := enc.DecryptIfEnabled("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", back)
}

func TestEncryptedAtRest(t *testing.T) {
	t.Setenv("INVOICEWA_ENABLE_ENCRYPTION", "true")
	t.Setenv("INVOICEWA_ENCRYPTION_SECRET", "test-secret-key-that-is-long-enough-123")

	db, err := New(filepath.Join(t.TempDir(), "enc.db"))
	require.NoError(t, err)
	defer db.Close()

	client := seedClient(t, db, "Budi", "6281234567890")

	var raw string
	err = db.db.QueryRow("SELECT phone_number FROM clients WHERE id = ?", client.ID).Scan(&raw)
	require.NoError(t, err)
	assert.NotEqual(t, "6281234567890", raw)

	got, err := db.GetClient(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, "6281234567890", got.PhoneNumber)
}
