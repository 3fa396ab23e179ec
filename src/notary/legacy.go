package notary

import (
	"strings"
)

const legacySeparator = "{"

type legacyCodec struct{}

func (legacyCodec) Version() string {
	return VersionLegacy
}

// EncodePayload joins the fields with '{'. Fields that contain a brace would
// not survive the round trip and are refused.
func (legacyCodec) EncodePayload(f Fact) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	for _, field := range []string{f.Buyer, f.Seller, f.HouseID} {
		if strings.ContainsAny(field, "{}") {
			return nil, NewPayloadErr(VersionLegacy, "fields may not contain '{' or '}'")
		}
	}

	return []byte(f.Buyer + legacySeparator + f.Seller + legacySeparator + f.HouseID), nil
}

func (legacyCodec) DecodePayload(payload []byte) (Fact, error) {
	parts := strings.Split(string(payload), legacySeparator)
	if len(parts) != 3 {
		return Fact{}, NewPayloadErr(VersionLegacy, "payload should contain exactly 3 fields")
	}

	f := NewFact(parts[0], parts[1], parts[2])
	if err := f.Validate(); err != nil {
		return Fact{}, NewPayloadErr(VersionLegacy, err.(PayloadErr).reason)
	}

	return f, nil
}

func (legacyCodec) Merge(prior []byte, f Fact) ([]byte, error) {
	if isStructured(prior) {
		return nil, ErrStructuredState
	}

	wrapped := f.Wrap()
	res := make([]byte, 0, len(wrapped)+len(prior))
	res = append(res, wrapped...)
	res = append(res, prior...)
	return res, nil
}

// legacyEntries splits 1.0 state into its wrapped facts, newest first. The
// split assumes no field contains a brace.
func legacyEntries(state []byte) []string {
	s := string(state)
	if s == "" {
		return nil
	}

	var res []string
	for len(s) > 0 {
		end := strings.Index(s, "}")
		if end < 0 {
			res = append(res, s)
			break
		}
		res = append(res, s[:end+1])
		s = s[end+1:]
	}
	return res
}
