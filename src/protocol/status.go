package protocol

// BatchStatus is the commit status of a batch as reported by the ledger.
type BatchStatus string

const (
	// StatusPending means the batch is known but not yet committed or
	// rejected.
	StatusPending BatchStatus = "PENDING"
	// StatusCommitted ...
	StatusCommitted BatchStatus = "COMMITTED"
	// StatusInvalid means a transaction of the batch was rejected.
	StatusInvalid BatchStatus = "INVALID"
	// StatusUnknown means the ledger has no record of the batch.
	StatusUnknown BatchStatus = "UNKNOWN"
)

// IsTerminal reports whether a status will not change anymore. UNKNOWN is
// treated as terminal: a ledger that never received a batch will not learn
// about it by being polled.
func (s BatchStatus) IsTerminal() bool {
	return s != StatusPending
}

// InvalidTransaction describes why a transaction of an INVALID batch was
// rejected.
type InvalidTransaction struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	ExtendedData []byte `json:"extended_data,omitempty"`
}

// BatchStatusEntry is one element of a batch_statuses response.
type BatchStatusEntry struct {
	ID                  string               `json:"id"`
	Status              BatchStatus          `json:"status"`
	InvalidTransactions []InvalidTransaction `json:"invalid_transactions"`
}

// BatchStatusResponse is the body of GET /batch_statuses.
type BatchStatusResponse struct {
	Data []BatchStatusEntry `json:"data"`
	Link string             `json:"link"`
}

// SubmitResponse is the body of a successful POST /batches.
type SubmitResponse struct {
	Link string `json:"link"`
}

// ErrorResponse is the body of a failed REST request.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}

// StateResponse is the body of GET /state/{address}.
type StateResponse struct {
	Data []byte `json:"data"`
	Head string `json:"head"`
	Link string `json:"link"`
}
