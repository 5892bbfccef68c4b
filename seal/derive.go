package seal

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keyInfo binds derived keys to their purpose, so the same master secret
// can safely be reused for other derivations elsewhere.
const keyInfo = "oidc-demo cookie sealing"

// DeriveKey expands a master secret into an AES key of the requested size
// (16, 24 or 32 bytes) using HKDF-SHA256. The salt is optional and may be
// nil; different salts yield independent keys.
func DeriveKey(secret, salt []byte, size int) ([]byte, error) {
	const op = "seal.DeriveKey"
	if len(secret) == 0 {
		return nil, fmt.Errorf("%s: secret is empty: %w", op, ErrInvalidKey)
	}
	switch size {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%s: key size must be 16, 24 or 32 bytes, got %d: %w", op, size, ErrInvalidKey)
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("%s: unable to derive key: %w", op, err)
	}
	return key, nil
}
