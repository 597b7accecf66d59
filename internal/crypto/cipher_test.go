package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCipher_Roundtrip(t *testing.T) {
	c, err := New("shared-secret")
	require.NoError(t, err)

	for _, text := range []string{"hello", "a note with https://example.com", "ünïcödé ✅", strings.Repeat("x", 4096)} {
		sealed, err := c.Encrypt(text)
		require.NoError(t, err)
		require.NotEqual(t, text, sealed)
		require.Equal(t, text, c.Decrypt(sealed))
	}
}

func TestCipher_EmptyIsNoop(t *testing.T) {
	c, err := New("shared-secret")
	require.NoError(t, err)

	sealed, err := c.Encrypt("")
	require.NoError(t, err)
	require.Equal(t, "", sealed)
	require.Equal(t, "", c.Decrypt(""))
}

func TestCipher_NonceIsRandom(t *testing.T) {
	c, err := New("shared-secret")
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCipher_MissingSecret(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	_, err = c.Encrypt("secret note")
	require.ErrorIs(t, err, ErrMissingSecret)
	require.Equal(t, SentinelKeyMissing, c.Decrypt("anything"))

	// empty stays empty even without a key
	sealed, err := c.Encrypt("")
	require.NoError(t, err)
	require.Equal(t, "", sealed)
}

func TestCipher_WrongSecret(t *testing.T) {
	a, err := New("correct")
	require.NoError(t, err)
	b, err := New("wrong")
	require.NoError(t, err)

	sealed, err := a.Encrypt("private")
	require.NoError(t, err)
	require.Equal(t, SentinelDecryptFailed, b.Decrypt(sealed))

	_, err = b.Open(sealed)
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestCipher_Corrupted(t *testing.T) {
	c, err := New("shared-secret")
	require.NoError(t, err)

	require.Equal(t, SentinelDecryptFailed, c.Decrypt("not base64 !!"))
	require.Equal(t, SentinelDecryptFailed, c.Decrypt("AAAA"))

	sealed, err := c.Encrypt("private")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[nonceLen+1] ^= 0xff
	require.Equal(t, SentinelDecryptFailed, c.Decrypt(base64.StdEncoding.EncodeToString(raw)))
}

func TestCipher_SharedSecretAcrossInstances(t *testing.T) {
	primary, err := New("shared-secret")
	require.NoError(t, err)
	partner, err := New("shared-secret")
	require.NoError(t, err)

	sealed, err := primary.Encrypt("from primary")
	require.NoError(t, err)
	require.Equal(t, "from primary", partner.Decrypt(sealed))
}

// Produced by: openssl enc -aes-256-cbc -md md5 -pass pass:test-shared-secret -base64 -A
const (
	saltedASCII   = "U2FsdGVkX1+5Ss8Dc7IkB8DkPMxTDq1paeBFP++hJGg7qz6kMnuu9kXHXFMKn+lT"
	saltedUnicode = "U2FsdGVkX19/EB1x15Q4cOPxcs2aOczvY5hOMiwNH33y2ELooanNkdI56Db33W58"
)

func TestCipher_ReadsSaltedPassphraseContent(t *testing.T) {
	c, err := New("test-shared-secret")
	require.NoError(t, err)

	require.Equal(t, "hello from the old app", c.Decrypt(saltedASCII))
	require.Equal(t, "ünïcode ☕ note", c.Decrypt(saltedUnicode))

	other, err := New("some-other-secret")
	require.NoError(t, err)
	require.Equal(t, SentinelDecryptFailed, other.Decrypt(saltedASCII))

	keyless, err := New("")
	require.NoError(t, err)
	require.Equal(t, SentinelKeyMissing, keyless.Decrypt(saltedASCII))

	raw, err := base64.StdEncoding.DecodeString(saltedASCII)
	require.NoError(t, err)
	truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-3])
	require.Equal(t, SentinelDecryptFailed, c.Decrypt(truncated))
}
