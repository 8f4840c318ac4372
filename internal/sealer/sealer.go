package sealer

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrOpen = errors.New("sealed value could not be opened")

// Sealer encrypts short secrets, such as live-platform sub-account
// passwords, before they are stored.
type Sealer struct {
	key [32]byte
}

// New accepts a base64 encoded 32 byte key. Any other value is stretched
// into a key with SHA-256.
func New(key string) (*Sealer, error) {
	if key == "" {
		return nil, errors.New("sealer: empty key")
	}
	s := &Sealer{}
	if raw, err := base64.StdEncoding.DecodeString(key); err == nil && len(raw) == len(s.key) {
		copy(s.key[:], raw)
		return s, nil
	}
	s.key = sha256.Sum256([]byte(key))
	return s, nil
}

// Seal returns base64(nonce || box). Empty input stays empty.
func (s *Sealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("sealer: nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
