package keys

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec"
)

// PublicKeyHex returns the lowercase hexadecimal representation of the
// 33-byte compressed form of the public key. This is the identity recorded in
// transaction headers.
func PublicKeyHex(pub *btcec.PublicKey) string {
	if pub == nil {
		return ""
	}
	return hex.EncodeToString(pub.SerializeCompressed())
}

// ParsePublicKeyHex accepts the compressed or uncompressed hex form of a
// secp256k1 public key.
func ParsePublicKeyHex(s string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(raw, Curve())
}
