package keypool

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"strings"

	"postureai/domain/core"
	"postureai/internal/errors"
)

// Cipher encrypts credential key material at rest with AES-256-GCM
type Cipher struct {
	aead cipher.AEAD
}

// LoadCipher resolves the encryption key and builds the cipher. Resolution
// order: the configured value, then the key file. The key is base64 of 32
// raw bytes. Absence is fatal to the process at startup.
func LoadCipher(configured, keyFile string) (*Cipher, error) {
	material := configured
	if material == "" && keyFile != "" {
		raw, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read encryption key file")
		}
		material = strings.TrimSpace(string(raw))
	}
	if material == "" {
		return nil, core.ErrEncryptionKey
	}

	key, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		return nil, errors.Wrap(err, "encryption key is not valid base64")
	}
	if len(key) != 32 {
		return nil, errors.ConfigInvalid("encryption key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build credential cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build credential cipher")
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals a plaintext API key into a base64 token
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt
func (c *Cipher) Decrypt(token string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Wrap(err, "encrypted key is not valid base64")
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", errors.New(errors.CodeEncryptionKey, "encrypted key is truncated")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt credential")
	}
	return string(plaintext), nil
}

// MaskKey reduces an API key to a display form showing the last 4 chars
func MaskKey(apiKey string) string {
	if len(apiKey) < 8 {
		return "****"
	}
	if strings.HasPrefix(apiKey, "sk-") {
		return "sk-..." + apiKey[len(apiKey)-4:]
	}
	return "..." + apiKey[len(apiKey)-4:]
}
