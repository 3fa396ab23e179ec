package notary

import (
	"fmt"
	"sort"
)

const (
	// VersionLegacy is the brace-delimited format.
	VersionLegacy = "1.0"
	// VersionStructured is the canonical JSON format.
	VersionStructured = "2.0"

	// DefaultVersion is what clients submit unless told otherwise. It stays on
	// 1.0 so that batches remain acceptable to processors that only know it.
	DefaultVersion = VersionLegacy
)

// Codec encodes payloads and merges facts into account state for one family
// version.
type Codec interface {
	Version() string

	EncodePayload(Fact) ([]byte, error)

	// DecodePayload must return a PayloadErr unless the payload carries
	// exactly three non-empty fields.
	DecodePayload([]byte) (Fact, error)

	// Merge returns the state obtained by recording fact on top of prior,
	// which is nil for a new account.
	Merge(prior []byte, fact Fact) ([]byte, error)
}

var codecs = map[string]Codec{
	VersionLegacy:     legacyCodec{},
	VersionStructured: structuredCodec{},
}

// CodecFor ...
func CodecFor(version string) (Codec, error) {
	c, ok := codecs[version]
	if !ok {
		return nil, fmt.Errorf("unsupported %s family version %q", FamilyName, version)
	}
	return c, nil
}

// Versions returns the supported family versions, sorted.
func Versions() []string {
	res := make([]string, 0, len(codecs))
	for v := range codecs {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}
