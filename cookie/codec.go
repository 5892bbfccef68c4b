package cookie

import (
	"github.com/rjvdw/oidc-demo/seal"
)

// identity stores values as-is.
type identity struct{}

func (identity) Encode(value string) (string, error) { return value, nil }
func (identity) Decode(value string) (string, error) { return value, nil }

// sealed encrypts values on write and decrypts them on read, so the
// browser only ever holds ciphertext.
type sealed struct {
	suite *seal.Suite
}

func (c sealed) Encode(value string) (string, error) {
	return c.suite.Encrypt([]byte(value))
}

func (c sealed) Decode(value string) (string, error) {
	plaintext, err := c.suite.Decrypt(value)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
