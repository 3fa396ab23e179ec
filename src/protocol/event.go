package protocol

import "fmt"

// Attribute is a key/value pair attached to an Event. Keys may repeat.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a notification emitted by a transaction handler, or by the ledger
// itself, when a batch is committed.
type Event struct {
	EventType  string      `json:"event_type"`
	Attributes []Attribute `json:"attributes"`
	Data       []byte      `json:"data,omitempty"`
}

// Values returns the values of all attributes named key.
func (ev *Event) Values(key string) []string {
	var res []string
	for _, a := range ev.Attributes {
		if a.Key == key {
			res = append(res, a.Value)
		}
	}
	return res
}

func (a Attribute) marshal() []byte {
	e := &encoder{}
	e.string(1, a.Key)
	e.string(2, a.Value)
	return e.buf
}

func (a *Attribute) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			a.Key, err = f.str()
		case 2:
			a.Value, err = f.str()
		}
		return err
	})
}

// Marshal ...
func (ev *Event) Marshal() ([]byte, error) {
	e := &encoder{}
	e.string(1, ev.EventType)
	for _, a := range ev.Attributes {
		e.message(2, a.marshal())
	}
	e.bytes(3, ev.Data)
	return e.buf, nil
}

// Unmarshal ...
func (ev *Event) Unmarshal(data []byte) error {
	*ev = Event{}
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			ev.EventType, err = f.str()
		case 2:
			var raw []byte
			if raw, err = f.raw(); err != nil {
				return err
			}
			var a Attribute
			if err = a.unmarshal(raw); err == nil {
				ev.Attributes = append(ev.Attributes, a)
			}
		case 3:
			ev.Data, err = f.raw()
		}
		return err
	})
}

// EventList is one delivery to a subscriber: the events of one committed
// batch that matched its subscriptions.
type EventList struct {
	Events []*Event `json:"events"`
}

// Marshal ...
func (l *EventList) Marshal() ([]byte, error) {
	e := &encoder{}
	for _, ev := range l.Events {
		raw, err := ev.Marshal()
		if err != nil {
			return nil, err
		}
		e.message(1, raw)
	}
	return e.buf, nil
}

// Unmarshal ...
func (l *EventList) Unmarshal(data []byte) error {
	*l = EventList{}
	return walk(data, func(f field) error {
		if f.num != 1 {
			return nil
		}
		raw, err := f.raw()
		if err != nil {
			return err
		}
		ev := new(Event)
		if err := ev.Unmarshal(raw); err != nil {
			return err
		}
		l.Events = append(l.Events, ev)
		return nil
	})
}

// FilterType selects how an EventFilter matches attribute values.
type FilterType int32

const (
	// FilterUnset is invalid in a subscription.
	FilterUnset FilterType = iota
	// SimpleAny matches if any attribute with the key equals MatchString.
	SimpleAny
	// SimpleAll matches if every attribute with the key equals MatchString.
	SimpleAll
	// RegexAny matches if any attribute with the key matches the regex.
	RegexAny
	// RegexAll matches if every attribute with the key matches the regex.
	RegexAll
)

var filterTypes = []string{"FILTER_TYPE_UNSET", "SIMPLE_ANY", "SIMPLE_ALL", "REGEX_ANY", "REGEX_ALL"}

// String ...
func (t FilterType) String() string {
	if t < 0 || int(t) >= len(filterTypes) {
		return fmt.Sprintf("FilterType(%d)", int32(t))
	}
	return filterTypes[t]
}

// MarshalText ...
func (t FilterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names returned by String.
func (t *FilterType) UnmarshalText(text []byte) error {
	parsed, err := ParseFilterType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseFilterType ...
func ParseFilterType(s string) (FilterType, error) {
	for i, name := range filterTypes {
		if name == s {
			return FilterType(i), nil
		}
	}
	return FilterUnset, fmt.Errorf("unknown filter type %q", s)
}

// EventFilter restricts a subscription to events whose attributes named Key
// match MatchString.
type EventFilter struct {
	Key         string     `json:"key"`
	MatchString string     `json:"match_string"`
	FilterType  FilterType `json:"filter_type"`
}

func (f EventFilter) marshal() []byte {
	e := &encoder{}
	e.string(1, f.Key)
	e.string(2, f.MatchString)
	e.varint(3, uint64(f.FilterType))
	return e.buf
}

func (f *EventFilter) unmarshal(data []byte) error {
	return walk(data, func(fd field) error {
		var err error
		switch fd.num {
		case 1:
			f.Key, err = fd.str()
		case 2:
			f.MatchString, err = fd.str()
		case 3:
			var v uint64
			v, err = fd.uint()
			f.FilterType = FilterType(v)
		}
		return err
	})
}

// EventSubscription selects events by type, then by filters. All filters must
// pass.
type EventSubscription struct {
	EventType string        `json:"event_type"`
	Filters   []EventFilter `json:"filters"`
}

// Marshal ...
func (s *EventSubscription) Marshal() ([]byte, error) {
	e := &encoder{}
	e.string(1, s.EventType)
	for _, f := range s.Filters {
		e.message(2, f.marshal())
	}
	return e.buf, nil
}

// Unmarshal ...
func (s *EventSubscription) Unmarshal(data []byte) error {
	*s = EventSubscription{}
	return walk(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			s.EventType, err = f.str()
		case 2:
			var raw []byte
			if raw, err = f.raw(); err != nil {
				return err
			}
			var ef EventFilter
			if err = ef.unmarshal(raw); err == nil {
				s.Filters = append(s.Filters, ef)
			}
		}
		return err
	})
}
