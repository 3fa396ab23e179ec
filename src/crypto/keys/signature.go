package keys

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/mosaicnetworks/notary/src/crypto"
)

// SignatureSize is the length of a compact r||s signature.
const SignatureSize = 64

// Sign signs the SHA256 digest of message. btcec derives the nonce from the
// key and digest (RFC6979) and returns a low-S signature, so the output is
// deterministic.
func Sign(priv *btcec.PrivateKey, message []byte) (string, error) {
	sig, err := priv.Sign(crypto.SHA256(message))
	if err != nil {
		return "", err
	}
	return EncodeSignature(sig), nil
}

// Verify reports whether signatureHex is a valid signature of message by the
// owner of publicKeyHex. Malformed keys or signatures simply fail to verify.
func Verify(publicKeyHex string, message []byte, signatureHex string) bool {
	pub, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false
	}

	sig, err := DecodeSignature(signatureHex)
	if err != nil {
		return false
	}

	return sig.Verify(crypto.SHA256(message), pub)
}

// EncodeSignature returns the hex of the compact form of a signature: r and s,
// each left-padded to 32 bytes.
func EncodeSignature(sig *btcec.Signature) string {
	compact := make([]byte, SignatureSize)
	sig.R.FillBytes(compact[:32])
	sig.S.FillBytes(compact[32:])
	return hex.EncodeToString(compact)
}

// DecodeSignature parses a string representation of a signature as produced by
// EncodeSignature.
func DecodeSignature(sig string) (*btcec.Signature, error) {
	raw, err := hex.DecodeString(sig)
	if err != nil {
		return nil, err
	}

	if len(raw) != SignatureSize {
		return nil, fmt.Errorf("wrong signature length: got %d bytes, want %d", len(raw), SignatureSize)
	}

	return &btcec.Signature{
		R: new(big.Int).SetBytes(raw[:32]),
		S: new(big.Int).SetBytes(raw[32:]),
	}, nil
}
