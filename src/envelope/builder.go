// Package envelope builds and verifies the signed transaction and batch
// envelopes that carry notary sales to the ledger.
package envelope

import (
	"errors"
	"math/rand"
	"strconv"

	"github.com/mosaicnetworks/notary/src/address"
	"github.com/mosaicnetworks/notary/src/crypto"
	"github.com/mosaicnetworks/notary/src/crypto/keys"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/mosaicnetworks/notary/src/protocol"
)

// NonceSource produces transaction nonces. Nonces only keep otherwise
// identical headers apart; they are not secret and need not be unpredictable.
type NonceSource func() string

// RandomNonce formats a math/rand float in hexadecimal notation, e.g.
// 0x1.9d2c3a7e41b2p-02. It only distinguishes otherwise identical transactions.
func RandomNonce() string {
	return strconv.FormatFloat(rand.Float64(), 'x', -1, 64)
}

// Builder signs sale transactions and wraps them in batches. The signer owns
// the account the sale is recorded under; the batcher, which defaults to the
// signer, signs the batch.
type Builder struct {
	signer  keys.Signer
	batcher keys.Signer
	codec   notary.Codec
	nonce   NonceSource
}

// Option ...
type Option func(*Builder) error

// WithBatcher signs batches with a key other than the transaction signer.
func WithBatcher(batcher keys.Signer) Option {
	return func(b *Builder) error {
		if batcher == nil {
			return errors.New("nil batcher")
		}
		b.batcher = batcher
		return nil
	}
}

// WithFamilyVersion selects the payload encoding.
func WithFamilyVersion(version string) Option {
	return func(b *Builder) error {
		c, err := notary.CodecFor(version)
		if err != nil {
			return err
		}
		b.codec = c
		return nil
	}
}

// WithNonce replaces RandomNonce.
func WithNonce(n NonceSource) Option {
	return func(b *Builder) error {
		b.nonce = n
		return nil
	}
}

// NewBuilder fails with a keys.KeyErr when signer is nil, so that a missing
// key is reported the same way whether it was never loaded or failed to load.
func NewBuilder(signer keys.Signer, opts ...Option) (*Builder, error) {
	if signer == nil {
		return nil, keys.NewKeyErr("", keys.KeyMissing, errors.New("no signer loaded"))
	}

	legacy, _ := notary.CodecFor(notary.DefaultVersion)

	b := &Builder{
		signer:  signer,
		batcher: signer,
		codec:   legacy,
		nonce:   RandomNonce,
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Address is the account the builder's sales are recorded under.
func (b *Builder) Address() string {
	return address.Derive(notary.FamilyName, b.signer.PublicKeyHex())
}

// FamilyVersion ...
func (b *Builder) FamilyVersion() string {
	return b.codec.Version()
}

// BuildTransaction encodes fact and signs the resulting header. The account
// address is both the only input and the only output.
func (b *Builder) BuildTransaction(fact notary.Fact) (*protocol.Transaction, error) {
	payload, err := b.codec.EncodePayload(fact)
	if err != nil {
		return nil, err
	}

	addr := b.Address()

	header := &protocol.TransactionHeader{
		BatcherPublicKey: b.batcher.PublicKeyHex(),
		Dependencies:     []string{},
		FamilyName:       notary.FamilyName,
		FamilyVersion:    b.codec.Version(),
		Inputs:           []string{addr},
		Nonce:            b.nonce(),
		Outputs:          []string{addr},
		PayloadSha512:    crypto.SHA512Hex(payload),
		SignerPublicKey:  b.signer.PublicKeyHex(),
	}

	headerBytes, err := header.Marshal()
	if err != nil {
		return nil, err
	}

	signature, err := b.signer.Sign(headerBytes)
	if err != nil {
		return nil, err
	}

	return &protocol.Transaction{
		Header:          headerBytes,
		HeaderSignature: signature,
		Payload:         payload,
	}, nil
}

// BuildBatch wraps transactions, in order, into a batch signed by the batcher.
func (b *Builder) BuildBatch(txns ...*protocol.Transaction) (*protocol.Batch, error) {
	if len(txns) == 0 {
		return nil, errors.New("a batch needs at least one transaction")
	}

	ids := make([]string, 0, len(txns))
	for _, t := range txns {
		ids = append(ids, t.HeaderSignature)
	}

	header := &protocol.BatchHeader{
		SignerPublicKey: b.batcher.PublicKeyHex(),
		TransactionIDs:  ids,
	}

	headerBytes, err := header.Marshal()
	if err != nil {
		return nil, err
	}

	signature, err := b.batcher.Sign(headerBytes)
	if err != nil {
		return nil, err
	}

	return &protocol.Batch{
		Header:          headerBytes,
		HeaderSignature: signature,
		Transactions:    txns,
	}, nil
}

// BuildSignedBatch builds the single-transaction batch recording fact.
func (b *Builder) BuildSignedBatch(fact notary.Fact) (*protocol.Batch, error) {
	txn, err := b.BuildTransaction(fact)
	if err != nil {
		return nil, err
	}
	return b.BuildBatch(txn)
}

// BuildBatchList builds one batch per fact.
func (b *Builder) BuildBatchList(facts ...notary.Fact) (*protocol.BatchList, error) {
	list := &protocol.BatchList{}
	for _, f := range facts {
		batch, err := b.BuildSignedBatch(f)
		if err != nil {
			return nil, err
		}
		list.Batches = append(list.Batches, batch)
	}
	return list, nil
}
