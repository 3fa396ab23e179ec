package processor

import (
	"errors"

	"github.com/mosaicnetworks/notary/src/address"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

// NotaryHandler records sales. Each signer owns one account, at the address
// derived from its public key, which accumulates every sale it submitted,
// newest first.
type NotaryHandler struct {
	namespace string
	logger    *logrus.Entry
}

// NewNotaryHandler ...
func NewNotaryHandler(logger *logrus.Entry) *NotaryHandler {
	return &NotaryHandler{
		namespace: address.Namespace(notary.FamilyName),
		logger:    logger,
	}
}

// FamilyName implements TransactionHandler.
func (h *NotaryHandler) FamilyName() string {
	return notary.FamilyName
}

// FamilyVersions implements TransactionHandler.
func (h *NotaryHandler) FamilyVersions() []string {
	return notary.Versions()
}

// Namespaces implements TransactionHandler.
func (h *NotaryHandler) Namespaces() []string {
	return []string{h.namespace}
}

// Apply implements TransactionHandler.
func (h *NotaryHandler) Apply(request *Request, context Context) error {
	header := request.Header

	codec, err := notary.CodecFor(header.FamilyVersion)
	if err != nil {
		return NewInvalidTransaction("%v", err)
	}

	fact, err := codec.DecodePayload(request.Payload)
	if err != nil {
		return NewInvalidTransaction("%v", err)
	}

	// The account is recomputed from the signer rather than taken from the
	// header, so a transaction can only ever write to its signer's account.
	addr := address.Derive(notary.FamilyName, header.SignerPublicKey)

	entries, err := context.GetState([]string{addr})
	if err != nil {
		if IsAuthorization(err) {
			return NewInvalidTransaction("%v", err)
		}
		return NewInternalError(err, "Failed to load state data")
	}

	// A missing entry is a new account.
	prior := entries[addr]

	newState, err := codec.Merge(prior, fact)
	if errors.Is(err, notary.ErrStructuredState) {
		return NewInvalidTransaction("%v", err)
	}
	if err != nil {
		return NewInternalError(err, "Failed to decode state data")
	}

	written, err := context.SetState(map[string][]byte{addr: newState})
	if err != nil {
		if IsAuthorization(err) {
			return NewInvalidTransaction("%v", err)
		}
		return NewInternalError(err, "Failed to write state data")
	}

	// Nothing written means the read-modify-write did not happen. Carrying on
	// would emit an event for a sale that is not in state.
	if len(written) == 0 {
		return NewInternalError(nil, "State Error")
	}

	var data []byte
	if codec.Version() == notary.VersionStructured {
		data = request.Payload
	}

	wrapped := fact.Wrap()
	attrs := []protocol.Attribute{{Key: notary.AttributeSaleAdded, Value: wrapped}}

	if err := context.AddEvent(notary.EventSaleAdded, attrs, data); err != nil {
		return NewInternalError(err, "Failed to add event")
	}

	h.logger.WithFields(logrus.Fields{
		"address": addr,
		"sale":    wrapped,
		"version": codec.Version(),
	}).Debug("Sale recorded")

	return nil
}
