// Package address derives ledger state addresses.
//
// An address is 70 lowercase hex characters: the first 6 characters of the
// SHA512 of the family name, which form the family namespace, followed by the
// first 64 characters of the SHA512 of the signer's public key hex. The client
// and the transaction processor compute it with the same function.
package address

import (
	"encoding/hex"
	"strings"

	"github.com/mosaicnetworks/notary/src/crypto"
)

const (
	// NamespaceLength is the number of hex characters of the family prefix.
	NamespaceLength = 6
	// Length is the total number of hex characters in an address.
	Length = 70
)

// Namespace returns the 6 character prefix shared by all addresses of a family.
func Namespace(family string) string {
	return crypto.SHA512Hex([]byte(family))[:NamespaceLength]
}

// Derive returns the address of the account owned by publicKeyHex within
// family. It depends on nothing else.
func Derive(family, publicKeyHex string) string {
	return Namespace(family) + crypto.SHA512Hex([]byte(publicKeyHex))[:Length-NamespaceLength]
}

// IsValid reports whether a is a well formed address: 70 lowercase hex
// characters.
func IsValid(a string) bool {
	if len(a) != Length || strings.ToLower(a) != a {
		return false
	}
	_, err := hex.DecodeString(a)
	return err == nil
}

// InNamespace reports whether a is a valid address that starts with the
// namespace of family.
func InNamespace(a, family string) bool {
	return IsValid(a) && strings.HasPrefix(a, Namespace(family))
}
