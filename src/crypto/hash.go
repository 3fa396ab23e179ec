// Package crypto holds the digests used across the notary family.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// SHA256 returns the SHA256 hash of the data. Signatures are computed over
// this digest.
func SHA256(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	hash := hasher.Sum(nil)
	return hash
}

// SHA512 returns the SHA512 hash of the data.
func SHA512(data []byte) []byte {
	hasher := sha512.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// SHA512Hex returns the lowercase hexadecimal SHA512 digest of the data, 128
// characters long. It is used for payload digests and address derivation.
func SHA512Hex(data []byte) string {
	return hex.EncodeToString(SHA512(data))
}
