package protocol

// TransactionHeader is the signed part of a transaction.
type TransactionHeader struct {
	BatcherPublicKey string   `json:"batcher_public_key"`
	Dependencies     []string `json:"dependencies"`
	FamilyName       string   `json:"family_name"`
	FamilyVersion    string   `json:"family_version"`
	Inputs           []string `json:"inputs"`
	Nonce            string   `json:"nonce"`
	Outputs          []string `json:"outputs"`
	PayloadSha512    string   `json:"payload_sha512"`
	SignerPublicKey  string   `json:"signer_public_key"`
}

// Marshal ...
func (h *TransactionHeader) Marshal() ([]byte, error) {
	e := &encoder{}
	e.string(1, h.BatcherPublicKey)
	e.strings(2, h.Dependencies)
	e.string(3, h.FamilyName)
	e.string(4, h.FamilyVersion)
	e.strings(5, h.Inputs)
	e.string(6, h.Nonce)
	e.strings(7, h.Outputs)
	e.string(9, h.PayloadSha512)
	e.string(10, h.SignerPublicKey)
	return e.buf, nil
}

// Unmarshal ...
func (h *TransactionHeader) Unmarshal(data []byte) error {
	*h = TransactionHeader{}
	return walk(data, func(f field) error {
		var err error
		var s string
		switch f.num {
		case 1:
			h.BatcherPublicKey, err = f.str()
		case 2:
			if s, err = f.str(); err == nil {
				h.Dependencies = append(h.Dependencies, s)
			}
		case 3:
			h.FamilyName, err = f.str()
		case 4:
			h.FamilyVersion, err = f.str()
		case 5:
			if s, err = f.str(); err == nil {
				h.Inputs = append(h.Inputs, s)
			}
		case 6:
			h.Nonce, err = f.str()
		case 7:
			if s, err = f.str(); err == nil {
				h.Outputs = append(h.Outputs, s)
			}
		case 9:
			h.PayloadSha512, err = f.str()
		case 10:
			h.SignerPublicKey, err = f.str()
		}
		return err
	})
}

// Transaction is an immutable, signed envelope around an opaque payload. Its
// HeaderSignature doubles as its identifier.
type Transaction struct {
	Header          []byte `json:"header"`
	HeaderSignature string `json:"header_signature"`
	Payload         []byte `json:"payload"`
}

// ID ...
func (t *Transaction) ID() string {
	return t.HeaderSignature
}

// DecodeHeader unmarshals the header bytes.
func (t *Transaction) DecodeHeader() (*TransactionHeader, error) {
	h := new(TransactionHeader)
	if err := h.Unmarshal(t.Header); err != nil {
		return nil, err
	}
	return h, nil
}

// Marshal ...
func (t *Transaction) Marshal() ([]byte, error) {
	e := &encoder{}
	e.bytes(1, t.Header)
	e.string(2, t.HeaderSignature)
	e.bytes(3, t.Payload)
	return e.buf, nil
}

// Unmarshal ...
func (t *Transaction) Unmarshal(data []byte) error {
	*t = Transaction{}
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			t.Header, err = f.raw()
		case 2:
			t.HeaderSignature, err = f.str()
		case 3:
			t.Payload, err = f.raw()
		}
		return err
	})
}
