package seal

import (
	"errors"
)

var (
	ErrInvalidKey          = errors.New("invalid key")
	ErrInvalidIVLength     = errors.New("invalid iv length")
	ErrUnsupportedMode     = errors.New("unsupported cipher mode")
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	ErrDecryptionFailed    = errors.New("decryption failed")
)
