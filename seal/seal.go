package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DefaultIVLength is the number of random initialization-vector bytes
// generated for each encryption unless overridden with WithIVLength.
const DefaultIVLength = 16

// sep joins the encoded segments of a combined ciphertext. It must not
// occur in the raw base64url alphabet, so splitting is unambiguous.
const sep = "."

// Strict decoding rejects non-canonical encodings, so a combined string
// never has two spellings of the same ciphertext.
var encoding = base64.RawURLEncoding.Strict()

// Suite is a symmetric encryption codec. The mode and key are fixed at
// construction and a Suite is safe for concurrent use.
type Suite struct {
	mode  Mode
	ivLen int
	block cipher.Block
	aead  cipher.AEAD // set only for authenticated modes
}

// New creates a Suite for the given AES key (16, 24 or 32 bytes).
// Supported options: WithMode, WithIVLength.
func New(key []byte, opt ...Option) (*Suite, error) {
	const op = "seal.New"
	opts := getSuiteOpts(opt...)
	if !opts.withMode.Supported() {
		return nil, fmt.Errorf("%s: mode %q: %w", op, opts.withMode, ErrUnsupportedMode)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%s: key must be 16, 24 or 32 bytes, got %d: %w", op, len(key), ErrInvalidKey)
	}
	if opts.withIVLength <= 0 {
		return nil, fmt.Errorf("%s: iv length must be positive, got %d: %w", op, opts.withIVLength, ErrInvalidIVLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create cipher: %w", op, err)
	}
	s := &Suite{
		mode:  opts.withMode,
		ivLen: opts.withIVLength,
		block: block,
	}
	switch s.mode {
	case AESGCM:
		aead, err := cipher.NewGCMWithNonceSize(block, s.ivLen)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to create gcm: %w", op, err)
		}
		s.aead = aead
	case AESCTR:
		// NewCTR requires the iv to be exactly one block.
		if s.ivLen != aes.BlockSize {
			return nil, fmt.Errorf("%s: ctr iv must be %d bytes, got %d: %w", op, aes.BlockSize, s.ivLen, ErrInvalidIVLength)
		}
	}
	return s, nil
}

// Mode returns the cipher mode the Suite was configured with.
func (s *Suite) Mode() Mode {
	return s.mode
}

// Encrypt encrypts plaintext under a fresh random iv and returns the
// combined iv/ciphertext/tag string.
func (s *Suite) Encrypt(plaintext []byte) (string, error) {
	const op = "Suite.Encrypt"
	iv := make([]byte, s.ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%s: unable to generate iv: %w", op, err)
	}

	switch s.mode {
	case AESGCM:
		sealed := s.aead.Seal(nil, iv, plaintext, nil)
		// Seal appends the tag to the ciphertext; split it back out so
		// the tag travels as its own segment.
		tagAt := len(sealed) - s.aead.Overhead()
		return strings.Join([]string{
			encoding.EncodeToString(iv),
			encoding.EncodeToString(sealed[:tagAt]),
			encoding.EncodeToString(sealed[tagAt:]),
		}, sep), nil
	case AESCTR:
		ciphertext := make([]byte, len(plaintext))
		cipher.NewCTR(s.block, iv).XORKeyStream(ciphertext, plaintext)
		return strings.Join([]string{
			encoding.EncodeToString(iv),
			encoding.EncodeToString(ciphertext),
		}, sep), nil
	default:
		return "", fmt.Errorf("%s: mode %q: %w", op, s.mode, ErrUnsupportedMode)
	}
}

// Decrypt reverses Encrypt. For authenticated modes a missing tag segment
// or a failed tag verification is an error; an unauthenticated plaintext
// is never returned.
func (s *Suite) Decrypt(combined string) ([]byte, error) {
	const op = "Suite.Decrypt"
	wantSegments := 2
	if s.mode.Authenticated() {
		wantSegments = 3
	}
	segments := strings.Split(combined, sep)
	if len(segments) != wantSegments {
		return nil, fmt.Errorf("%s: expected %d segments, got %d: %w", op, wantSegments, len(segments), ErrMalformedCiphertext)
	}

	decoded := make([][]byte, len(segments))
	for i, seg := range segments {
		b, err := encoding.DecodeString(seg)
		if err != nil {
			return nil, fmt.Errorf("%s: segment %d is not base64url: %w", op, i, ErrMalformedCiphertext)
		}
		decoded[i] = b
	}
	iv := decoded[0]
	if len(iv) != s.ivLen {
		return nil, fmt.Errorf("%s: expected %d iv bytes, got %d: %w", op, s.ivLen, len(iv), ErrMalformedCiphertext)
	}

	switch s.mode {
	case AESGCM:
		sealed := append(decoded[1], decoded[2]...)
		plaintext, err := s.aead.Open(nil, iv, sealed, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrDecryptionFailed)
		}
		return plaintext, nil
	case AESCTR:
		plaintext := make([]byte, len(decoded[1]))
		cipher.NewCTR(s.block, iv).XORKeyStream(plaintext, decoded[1])
		return plaintext, nil
	default:
		return nil, fmt.Errorf("%s: mode %q: %w", op, s.mode, ErrUnsupportedMode)
	}
}
