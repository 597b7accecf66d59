// Package crypto seals free-text feed content so the store only ever holds ciphertext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	nonceLen = 12
	keyLen   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Sentinels returned by Decrypt in place of plaintext. They are visible on
// purpose so a broken record is distinguishable from an empty one.
const (
	SentinelKeyMissing    = "⚠️ key missing"
	SentinelDecryptFailed = "⚠️ decrypt failed"
)

var (
	// ErrMissingSecret is returned by Encrypt when no secret was configured.
	ErrMissingSecret = errors.New("encryption secret not configured")
	// ErrDecrypt indicates ciphertext could not be recovered.
	ErrDecrypt = errors.New("ciphertext could not be decrypted")
)

// keySalt scopes the derived key to feed content. The secret is shared by
// both parties, so the salt must be fixed for both to derive the same key.
var keySalt = []byte("syncus/stream/content/v1")

// Cipher encrypts and decrypts feed content with one process-wide secret.
type Cipher struct {
	aead       cipher.AEAD
	passphrase []byte
}

// New derives the content key from secret. An empty secret yields a Cipher
// that refuses to encrypt and decrypts to SentinelKeyMissing.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return &Cipher{}, nil
	}

	key := argon2.IDKey([]byte(secret), keySalt, argonTime, argonMemory, argonThreads, keyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: gcm, passphrase: []byte(secret)}, nil
}

// Ready reports whether a secret is configured.
func (c *Cipher) Ready() error {
	if c == nil || c.aead == nil {
		return ErrMissingSecret
	}
	return nil
}

// Encrypt returns base64(nonce || sealed). Empty input yields empty output.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if err := c.Ready(); err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open is the strict form of Decrypt and reports failures as errors. It also
// reads OpenSSL "Salted__" passphrase ciphertext sealed with the same secret.
func (c *Cipher) Open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if err := c.Ready(); err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if isLegacy(raw) {
		return openLegacy(c.passphrase, raw)
	}
	if len(raw) <= nonceLen {
		return "", ErrDecrypt
	}
	plaintext, err := c.aead.Open(nil, raw[:nonceLen], raw[nonceLen:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(plaintext) == 0 {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// Decrypt never fails: a missing secret or unrecoverable ciphertext yields a
// sentinel string so one bad record cannot break a whole feed.
func (c *Cipher) Decrypt(ciphertext string) string {
	plaintext, err := c.Open(ciphertext)
	switch {
	case err == nil:
		return plaintext
	case errors.Is(err, ErrMissingSecret):
		return SentinelKeyMissing
	default:
		return SentinelDecryptFailed
	}
}
