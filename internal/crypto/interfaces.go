package crypto

// CipherService owns all symmetric cryptography in the agent. It knows
// nothing about the network, the database, or licenses; its only job is to
// protect credential values at rest.
//
// Scheme:
//
//	master  = GenerateMasterKey()            (first run, persisted in settings)
//	dataKey = HKDF-SHA256(master, "credential-encryption")
//	ct, iv  = Encrypt(plaintext)             (AES-256-GCM, random 12-byte nonce)
//
// The master key is generated once, stored in the local settings table, and
// never transmitted. There is no key rotation path: rotating the master key
// without re-encrypting every stored credential would orphan existing
// ciphertexts, so the operation is deliberately not offered.
type CipherService interface {
	// GenerateMasterKey generates a random 256-bit master key using the
	// OS CSPRNG. Called exactly once, on the agent's first run.
	GenerateMasterKey() ([]byte, error)

	// Encrypt encrypts plaintext with the derived data key using
	// AES-256-GCM. Returns the ciphertext (authentication tag embedded)
	// and the nonce, both base64-encoded, stored as separate columns.
	Encrypt(plaintext string) (ciphertext, iv string, err error)

	// Decrypt reverses Encrypt. Decryption of a tampered ciphertext or a
	// mismatched iv fails with ErrIntegrity; it never returns garbage.
	Decrypt(ciphertext, iv string) (string, error)
}
