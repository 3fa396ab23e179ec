package keys

import (
	"github.com/btcsuite/btcd/btcec"
)

// Signer is the capability to sign envelopes on behalf of an identity. It is
// obtained once, by loading a key, and passed explicitly to whatever needs to
// sign.
type Signer interface {
	// Sign returns the hex signature of message.
	Sign(message []byte) (string, error)

	// PublicKeyHex identifies the signer.
	PublicKeyHex() string
}

// KeySigner is a Signer backed by an in-memory secp256k1 private key.
type KeySigner struct {
	key    *btcec.PrivateKey
	pubHex string
}

// NewKeySigner ...
func NewKeySigner(key *btcec.PrivateKey) *KeySigner {
	return &KeySigner{
		key:    key,
		pubHex: PublicKeyHex(key.PubKey()),
	}
}

// LoadSigner reads a key file through SimpleKeyfile and wraps the key in a
// KeySigner. Errors are KeyErrs.
func LoadSigner(keyfile string) (*KeySigner, error) {
	key, err := NewSimpleKeyfile(keyfile).ReadKey()
	if err != nil {
		return nil, err
	}
	return NewKeySigner(key), nil
}

// Sign implements Signer.
func (s *KeySigner) Sign(message []byte) (string, error) {
	return Sign(s.key, message)
}

// PublicKeyHex implements Signer.
func (s *KeySigner) PublicKeyHex() string {
	return s.pubHex
}

// PrivateKey ...
func (s *KeySigner) PrivateKey() *btcec.PrivateKey {
	return s.key
}
