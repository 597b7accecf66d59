package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"unicode/utf8"
)

// legacyMagic prefixes OpenSSL passphrase ciphertext: magic || salt || body.
var legacyMagic = []byte("Salted__")

const legacySaltLen = 8

func isLegacy(raw []byte) bool {
	return len(raw) >= len(legacyMagic)+legacySaltLen+aes.BlockSize && bytes.HasPrefix(raw, legacyMagic)
}

// openLegacy reads content written before the current format: AES-256-CBC
// with PKCS#7 padding, key and IV from EVP_BytesToKey over MD5 with one
// round. It is decrypt-only.
func openLegacy(passphrase, raw []byte) (string, error) {
	salt := raw[len(legacyMagic) : len(legacyMagic)+legacySaltLen]
	body := raw[len(legacyMagic)+legacySaltLen:]
	if len(body)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	key, iv := bytesToKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrDecrypt
	}
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)

	plaintext, ok := unpad(out)
	if !ok || len(plaintext) == 0 || !utf8.Valid(plaintext) {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

func bytesToKey(passphrase, salt []byte) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keyLen+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+aes.BlockSize]
}

func unpad(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, false
	}
	return b[:len(b)-n], true
}
