package protocol

// BatchHeader is the signed part of a batch. TransactionIDs lists the header
// signatures of the batch's transactions, in order.
type BatchHeader struct {
	SignerPublicKey string   `json:"signer_public_key"`
	TransactionIDs  []string `json:"transaction_ids"`
}

// Marshal ...
func (h *BatchHeader) Marshal() ([]byte, error) {
	e := &encoder{}
	e.string(1, h.SignerPublicKey)
	e.strings(2, h.TransactionIDs)
	return e.buf, nil
}

// Unmarshal ...
func (h *BatchHeader) Unmarshal(data []byte) error {
	*h = BatchHeader{}
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			h.SignerPublicKey, err = f.str()
		case 2:
			var id string
			if id, err = f.str(); err == nil {
				h.TransactionIDs = append(h.TransactionIDs, id)
			}
		}
		return err
	})
}

// Batch is the atomic unit of submission: either all of its transactions are
// committed or none are.
type Batch struct {
	Header          []byte         `json:"header"`
	HeaderSignature string         `json:"header_signature"`
	Transactions    []*Transaction `json:"transactions"`
	Trace           bool           `json:"trace"`
}

// ID ...
func (b *Batch) ID() string {
	return b.HeaderSignature
}

// DecodeHeader unmarshals the header bytes.
func (b *Batch) DecodeHeader() (*BatchHeader, error) {
	h := new(BatchHeader)
	if err := h.Unmarshal(b.Header); err != nil {
		return nil, err
	}
	return h, nil
}

// Marshal ...
func (b *Batch) Marshal() ([]byte, error) {
	e := &encoder{}
	e.bytes(1, b.Header)
	e.string(2, b.HeaderSignature)
	for _, t := range b.Transactions {
		raw, err := t.Marshal()
		if err != nil {
			return nil, err
		}
		e.message(3, raw)
	}
	e.bool(4, b.Trace)
	return e.buf, nil
}

// Unmarshal ...
func (b *Batch) Unmarshal(data []byte) error {
	*b = Batch{}
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			b.Header, err = f.raw()
		case 2:
			b.HeaderSignature, err = f.str()
		case 3:
			var raw []byte
			if raw, err = f.raw(); err != nil {
				return err
			}
			t := new(Transaction)
			if err = t.Unmarshal(raw); err == nil {
				b.Transactions = append(b.Transactions, t)
			}
		case 4:
			var v uint64
			v, err = f.uint()
			b.Trace = v != 0
		}
		return err
	})
}

// BatchList is the body of a POST /batches request.
type BatchList struct {
	Batches []*Batch `json:"batches"`
}

// Marshal ...
func (l *BatchList) Marshal() ([]byte, error) {
	e := &encoder{}
	for _, b := range l.Batches {
		raw, err := b.Marshal()
		if err != nil {
			return nil, err
		}
		e.message(1, raw)
	}
	return e.buf, nil
}

// Unmarshal ...
func (l *BatchList) Unmarshal(data []byte) error {
	*l = BatchList{}
	return walk(data, func(f field) error {
		if f.num != 1 {
			return nil
		}
		raw, err := f.raw()
		if err != nil {
			return err
		}
		b := new(Batch)
		if err := b.Unmarshal(raw); err != nil {
			return err
		}
		l.Batches = append(l.Batches, b)
		return nil
	})
}

// BatchIDs returns the ids of the batches in the list, in order.
func (l *BatchList) BatchIDs() []string {
	ids := make([]string, 0, len(l.Batches))
	for _, b := range l.Batches {
		ids = append(ids, b.ID())
	}
	return ids
}
