package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// prefix marks sealed values so rows written before a key was configured can
// still be read back as plaintext.
var prefix = []byte("enc1:")

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Service seals PII columns (bank account, PAN, Aadhaar) with AES-256-GCM.
// Without a key it stores and returns plaintext.
type Service struct {
	aead cipher.AEAD
}

func New(key string) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

func (s *Service) SealString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if !s.Configured() {
		return []byte(value), nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := append([]byte{}, prefix...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, []byte(value), nil), nil
}

func (s *Service) OpenString(stored []byte) (string, error) {
	if len(stored) == 0 {
		return "", nil
	}
	if len(stored) < len(prefix) || string(stored[:len(prefix)]) != string(prefix) {
		return string(stored), nil
	}
	if !s.Configured() {
		return "", errors.New("encrypted value present but DATA_ENCRYPTION_KEY is not set")
	}
	body := stored[len(prefix):]
	if len(body) < s.aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}
	nonce, data := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		decoded, err := hex.DecodeString(raw)
		if err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
