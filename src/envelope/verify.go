package envelope

import (
	"fmt"

	"github.com/mosaicnetworks/notary/src/crypto"
	"github.com/mosaicnetworks/notary/src/crypto/keys"
	"github.com/mosaicnetworks/notary/src/protocol"
)

// VerifyErr reports an envelope that is not self-consistent.
type VerifyErr struct {
	ID     string
	Reason string
}

// Error ...
func (e VerifyErr) Error() string {
	return fmt.Sprintf("envelope %.16s: %s", e.ID, e.Reason)
}

// VerifyTransaction checks the header signature and the payload digest, and
// returns the decoded header.
func VerifyTransaction(t *protocol.Transaction) (*protocol.TransactionHeader, error) {
	header, err := t.DecodeHeader()
	if err != nil {
		return nil, VerifyErr{t.HeaderSignature, fmt.Sprintf("bad header: %v", err)}
	}

	if !keys.Verify(header.SignerPublicKey, t.Header, t.HeaderSignature) {
		return nil, VerifyErr{t.HeaderSignature, "bad header signature"}
	}

	if crypto.SHA512Hex(t.Payload) != header.PayloadSha512 {
		return nil, VerifyErr{t.HeaderSignature, "payload does not match payload_sha512"}
	}

	return header, nil
}

// VerifyBatch checks the batch signature, that the header lists exactly the
// batch's transactions in order, and every transaction. Transactions must name
// the batch signer as their batcher.
func VerifyBatch(b *protocol.Batch) ([]*protocol.TransactionHeader, error) {
	header, err := b.DecodeHeader()
	if err != nil {
		return nil, VerifyErr{b.HeaderSignature, fmt.Sprintf("bad header: %v", err)}
	}

	if !keys.Verify(header.SignerPublicKey, b.Header, b.HeaderSignature) {
		return nil, VerifyErr{b.HeaderSignature, "bad header signature"}
	}

	if len(b.Transactions) == 0 {
		return nil, VerifyErr{b.HeaderSignature, "no transactions"}
	}

	if len(header.TransactionIDs) != len(b.Transactions) {
		return nil, VerifyErr{b.HeaderSignature, "transaction ids do not match transactions"}
	}

	res := make([]*protocol.TransactionHeader, 0, len(b.Transactions))
	for i, t := range b.Transactions {
		if header.TransactionIDs[i] != t.HeaderSignature {
			return nil, VerifyErr{b.HeaderSignature, fmt.Sprintf("transaction %d is out of order", i)}
		}

		th, err := VerifyTransaction(t)
		if err != nil {
			return nil, err
		}

		if th.BatcherPublicKey != header.SignerPublicKey {
			return nil, VerifyErr{t.HeaderSignature, "batcher public key does not match batch signer"}
		}

		res = append(res, th)
	}

	return res, nil
}
