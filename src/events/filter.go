package events

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mosaicnetworks/notary/src/protocol"
)

type filter struct {
	key   string
	ftype protocol.FilterType
	value string
	re    *regexp.Regexp
}

// subscription is an EventSubscription with its regexes compiled.
type subscription struct {
	eventType string
	filters   []filter
}

func compile(subs []protocol.EventSubscription) ([]subscription, error) {
	if len(subs) == 0 {
		return nil, errors.New("no subscriptions")
	}

	res := make([]subscription, 0, len(subs))
	for i, s := range subs {
		if s.EventType == "" {
			return nil, fmt.Errorf("subscription %d: empty event type", i)
		}

		c := subscription{eventType: s.EventType}
		for _, f := range s.Filters {
			cf := filter{key: f.Key, ftype: f.FilterType, value: f.MatchString}

			switch f.FilterType {
			case protocol.SimpleAny, protocol.SimpleAll:
			case protocol.RegexAny, protocol.RegexAll:
				re, err := regexp.Compile(f.MatchString)
				if err != nil {
					return nil, fmt.Errorf("subscription %d: %v", i, err)
				}
				cf.re = re
			default:
				return nil, fmt.Errorf("subscription %d: invalid filter type %s", i, f.FilterType)
			}

			c.filters = append(c.filters, cf)
		}
		res = append(res, c)
	}

	return res, nil
}

func (f filter) matchValue(v string) bool {
	if f.re != nil {
		return f.re.MatchString(v)
	}
	return v == f.value
}

// match reports whether ev has at least one attribute named key and whether
// any or all of them, depending on the filter type, match.
func (f filter) match(ev *protocol.Event) bool {
	values := ev.Values(f.key)
	if len(values) == 0 {
		return false
	}

	all := f.ftype == protocol.SimpleAll || f.ftype == protocol.RegexAll

	for _, v := range values {
		ok := f.matchValue(v)
		if ok && !all {
			return true
		}
		if !ok && all {
			return false
		}
	}
	return all
}

func (s subscription) match(ev *protocol.Event) bool {
	if ev.EventType != s.eventType {
		return false
	}
	for _, f := range s.filters {
		if !f.match(ev) {
			return false
		}
	}
	return true
}

// filterEvents returns the events matching at least one subscription, in
// order.
func filterEvents(subs []subscription, events []*protocol.Event) []*protocol.Event {
	var res []*protocol.Event
	for _, ev := range events {
		for _, s := range subs {
			if s.match(ev) {
				res = append(res, ev)
				break
			}
		}
	}
	return res
}
