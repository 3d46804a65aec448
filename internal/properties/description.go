package properties

import (
	"regexp"
)

var (
	lineBreak = regexp.MustCompile(`(?i)\s*<br\s*/?>\s*`)
	fieldLine = regexp.MustCompile(`^([^:]*):\s?(.*)$`)
)

// Fields is an ordered string mapping. Setting an existing key replaces its
// value and keeps its original position.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty mapping.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set stores value under key.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns keys in first-seen order.
func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	return len(f.keys)
}

// ParseDescription splits a feed description of "KEY: value" lines joined by
// <br> tags into fields keyed by token. Lines without a colon are skipped.
// An UPDATED value is normalized to RFC 3339.
func ParseDescription(text string) (*Fields, error) {
	fields := NewFields()
	if text == "" {
		return fields, nil
	}

	for _, line := range lineBreak.Split(text, -1) {
		m := fieldLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		key, value := m[1], m[2]
		if key == "UPDATED" {
			updated, err := NormalizeDate(value, FormatUpdated)
			if err != nil {
				return nil, err
			}
			value = updated
		}

		fields.Set(ToToken(key), value)
	}

	return fields, nil
}
