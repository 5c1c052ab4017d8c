package payload

import "fmt"

// DefaultDeepLinkKey is the payload field campaigns use for the deep link.
const DefaultDeepLinkKey = "pinpoint.deeplink"

// Payload is an immutable notification payload.
// The zero value is an empty payload.
type Payload struct {
	fields Map
}

// New builds a Payload from a map. The map is deep-copied.
func New(fields Map) Payload {
	if fields == nil {
		return Payload{fields: Map{}}
	}
	return Payload{fields: clone(fields).(Map)}
}

// FromMap builds a Payload from plain Go values, dropping nils.
func FromMap(m map[string]any) Payload {
	v, _ := FromAny(m)
	fields, _ := v.(Map)
	return Payload{fields: fields}
}

// Len returns the number of top-level fields.
func (p Payload) Len() int {
	return len(p.fields)
}

// Keys returns the top-level keys in canonical order.
func (p Payload) Keys() []string {
	return p.fields.SortedKeys()
}

// Get returns a copy of the value stored under key.
func (p Payload) Get(key string) (Value, bool) {
	v, ok := p.fields[key]
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// StringField returns the string stored under key. It reports false when the
// key is absent or holds a non-string value.
func (p Payload) StringField(key string) (string, bool) {
	s, ok := p.fields[key].(String)
	return string(s), ok
}

// DeepLink returns the first non-empty string found under keys, verbatim.
// With no keys it consults DefaultDeepLinkKey.
func (p Payload) DeepLink(keys ...string) (string, bool) {
	if len(keys) == 0 {
		keys = []string{DefaultDeepLinkKey}
	}
	for _, k := range keys {
		s, ok := p.StringField(k)
		if !ok {
			continue
		}
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// Fields returns a deep copy of the payload contents.
func (p Payload) Fields() Map {
	return New(p.fields).fields
}

// AsMap returns the payload as plain Go values.
func (p Payload) AsMap() map[string]any {
	m, _ := ToAny(p.orEmpty()).(map[string]any)
	return m
}

// Canonical returns the canonical JSON rendering of the payload.
func (p Payload) Canonical() ([]byte, error) {
	return MarshalCanonical(p.orEmpty())
}

// Digest returns the domain-separated SHA-256 of the canonical rendering.
func (p Payload) Digest() (string, error) {
	data, err := p.Canonical()
	if err != nil {
		return "", fmt.Errorf("payload digest: %w", err)
	}
	return hashWithDomain(DomainPayload, data), nil
}

// MarshalJSON renders the payload in canonical form.
func (p Payload) MarshalJSON() ([]byte, error) {
	return p.Canonical()
}

// UnmarshalJSON decodes a JSON object into the payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("decode payload: expected object, got %T", raw)
	}
	*p = FromMap(m)
	return nil
}

func (p Payload) orEmpty() Map {
	if p.fields == nil {
		return Map{}
	}
	return p.fields
}
