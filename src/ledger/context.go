package ledger

import (
	"sort"
	"strings"

	"github.com/mosaicnetworks/notary/src/address"
	cm "github.com/mosaicnetworks/notary/src/common"
	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/protocol"
)

// Context implements processor.Context for one transaction. It only lets the
// handler read addresses matching the header's inputs and write addresses
// matching its outputs, where a declared entry may be a full address or a
// prefix. Writes and events are buffered until the executor accepts the
// transaction.
type Context struct {
	txn     StoreTxn
	inputs  []string
	outputs []string
	writes  map[string][]byte
	events  []*protocol.Event
}

func newContext(txn StoreTxn, header *protocol.TransactionHeader) *Context {
	return &Context{
		txn:     txn,
		inputs:  header.Inputs,
		outputs: header.Outputs,
		writes:  make(map[string][]byte),
	}
}

func declared(list []string, addr string) bool {
	for _, d := range list {
		if strings.HasPrefix(addr, d) {
			return true
		}
	}
	return false
}

// GetState implements processor.Context.
func (c *Context) GetState(addresses []string) (map[string][]byte, error) {
	res := make(map[string][]byte)

	for _, a := range addresses {
		if !address.IsValid(a) || !declared(c.inputs, a) {
			return nil, &processor.AuthorizationErr{Address: a, Op: "read"}
		}

		if v, ok := c.writes[a]; ok {
			res[a] = v
			continue
		}

		v, err := c.txn.Get(a)
		if cm.IsStore(err, cm.KeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res[a] = v
	}

	return res, nil
}

// SetState implements processor.Context. It either accepts every entry or
// none.
func (c *Context) SetState(entries map[string][]byte) ([]string, error) {
	for a := range entries {
		if !address.IsValid(a) || !declared(c.outputs, a) {
			return nil, &processor.AuthorizationErr{Address: a, Op: "write"}
		}
	}

	written := make([]string, 0, len(entries))
	for a, v := range entries {
		c.writes[a] = append([]byte(nil), v...)
		written = append(written, a)
	}
	sort.Strings(written)

	return written, nil
}

// AddEvent implements processor.Context.
func (c *Context) AddEvent(eventType string, attributes []protocol.Attribute, data []byte) error {
	c.events = append(c.events, &protocol.Event{
		EventType:  eventType,
		Attributes: append([]protocol.Attribute(nil), attributes...),
		Data:       append([]byte(nil), data...),
	})
	return nil
}

// flush moves the buffered writes into the store transaction and returns the
// addresses written, sorted.
func (c *Context) flush() ([]string, error) {
	addrs := make([]string, 0, len(c.writes))
	for a := range c.writes {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)

	for _, a := range addrs {
		if err := c.txn.Set(a, c.writes[a]); err != nil {
			return nil, err
		}
	}
	return addrs, nil
}
