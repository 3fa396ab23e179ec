// Package keys implements the public key cryptography used by notary clients
// and validators.
//
// A client owns a secp256k1 key-pair. The private key signs transaction and
// batch headers, and the compressed public key, hex encoded, identifies the
// signer on the ledger. The same public key also determines the address of the
// account a sale is recorded under.
//
// Signatures are deterministic (RFC6979) ECDSA over the SHA256 digest of the
// message, normalised to low-S and serialised as the 64-byte concatenation of
// r and s. This is the format Sawtooth validators expect.
//
// Keys are stored on disk as the hex encoding of the 32-byte private scalar,
// in a file that must only be accessible to its owner. Every failure to
// obtain a usable key is reported as a KeyErr, which callers treat as a
// configuration problem rather than a ledger problem.
package keys
