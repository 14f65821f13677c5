// Package password hashes and verifies user passwords with argon2id.
package password

import (
	"fmt"

	"github.com/alexedwards/argon2id"
)

type Hasher interface {
	// Hash returns the encoded argon2id digest of raw.
	Hash(raw string) (string, error)

	// Verify reports whether raw matches the encoded digest.
	Verify(raw, digest string) (bool, error)
}

type argon2idHasher struct {
	params *argon2id.Params
}

func NewHasher() Hasher {
	return NewHasherWithParams(argon2id.DefaultParams)
}

func NewHasherWithParams(params *argon2id.Params) Hasher {
	return &argon2idHasher{params: params}
}

func (h *argon2idHasher) Hash(raw string) (string, error) {
	digest, err := argon2id.CreateHash(raw, h.params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return digest, nil
}

func (h *argon2idHasher) Verify(raw, digest string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(raw, digest)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return match, nil
}
