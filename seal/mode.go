package seal

// Mode selects the cipher mode a Suite encrypts with.
type Mode string

const (
	// AESGCM is AES in Galois/Counter Mode. Every ciphertext carries an
	// authentication tag which is verified on decryption.
	AESGCM Mode = "aes-gcm"

	// AESCTR is AES in counter mode. It produces no authentication tag
	// and offers confidentiality only.
	AESCTR Mode = "aes-ctr"
)

// modeProperties statically describes a supported mode. Whether a mode is
// authenticated is declared here, never discovered at runtime.
type modeProperties struct {
	authenticated bool
}

var supportedModes = map[Mode]modeProperties{
	AESGCM: {authenticated: true},
	AESCTR: {authenticated: false},
}

// Authenticated reports whether the mode produces an authentication tag.
func (m Mode) Authenticated() bool {
	return supportedModes[m].authenticated
}

// Supported reports whether the mode is known to this package.
func (m Mode) Supported() bool {
	_, ok := supportedModes[m]
	return ok
}

func (m Mode) String() string {
	return string(m)
}
