package engine

import "io"

// Encryptor provides at-rest encryption for external blob stores.
// Encrypting requires only the public key; decrypting requires the
// private key, which stays locked behind a passphrase until Unlock.
type Encryptor interface {
	// Setup generates and stores a new key pair protected by the
	// passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns
	// a context able to decrypt content.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if key material is present.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key.
type DecryptionContext interface {
	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
