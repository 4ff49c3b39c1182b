// Package normalize turns a model reply into calendar events.
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alexanderramin/smartcal/internal/domain"
)

// Field names accepted in a reply entry, English first.
var (
	dateKeys     = []string{"date", "日期"}
	locationKeys = []string{"location", "地点"}
	timeKeys     = []string{"time", "时间"}
	activityKeys = []string{"activity", "事项"}
)

// Container fields checked, in order, when the reply is an object.
var containerKeys = []string{"events", "事件"}

// Normalize parses raw into events. It never fails: unparsable input yields
// nil and malformed entries are skipped.
func Normalize(raw string) []domain.Event {
	entries := candidates([]byte(strings.TrimSpace(raw)))

	var events []domain.Event
	for _, entry := range entries {
		e, ok := toEvent(entry)
		if !ok {
			continue
		}
		events = append(events, e)
	}
	return events
}

// candidates locates the array of entry objects in data.
func candidates(data []byte) []json.RawMessage {
	switch firstByte(data) {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil
		}
		return arr
	case '{':
		keys, fields, err := orderedObject(data)
		if err != nil {
			return nil
		}
		for _, k := range containerKeys {
			if v, ok := fields[k]; ok {
				return asArray(v)
			}
		}
		for _, k := range keys {
			if firstByte(fields[k]) == '[' {
				return asArray(fields[k])
			}
		}
		// A lone event object.
		return []json.RawMessage{data}
	default:
		return nil
	}
}

func asArray(v json.RawMessage) []json.RawMessage {
	var arr []json.RawMessage
	if err := json.Unmarshal(v, &arr); err != nil {
		return nil
	}
	return arr
}

func toEvent(entry json.RawMessage) (domain.Event, bool) {
	if firstByte(entry) != '{' {
		return domain.Event{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return domain.Event{}, false
	}

	date := lookup(fields, dateKeys)
	if date == "" {
		return domain.Event{}, false
	}
	e, err := domain.NewEvent(
		date,
		lookup(fields, timeKeys),
		lookup(fields, locationKeys),
		lookup(fields, activityKeys),
	)
	if err != nil {
		return domain.Event{}, false
	}
	return e, true
}

// lookup returns the first non-empty value found under keys, rendered as text.
// Missing, null and empty values fall through to the next key.
func lookup(fields map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if s := scalarText(v); s != "" {
			return s
		}
	}
	return ""
}

// scalarText renders a JSON scalar as text. Strings are unquoted, numbers and
// booleans keep their literal form; null, arrays and objects give "".
func scalarText(v json.RawMessage) string {
	switch firstByte(v) {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[', 'n', 0:
		return ""
	default:
		return string(bytes.TrimSpace(v))
	}
}

// orderedObject decodes a JSON object, also returning its keys in document order.
func orderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, nil, err
		}
	}
	return keys, fields, nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
