package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultContainerKey is the extras key under which the OS attaches the
// notification payload.
const DefaultContainerKey = "notification"

// ErrMissingPayload is returned when a system event carries no payload
// container under the expected key.
var ErrMissingPayload = errors.New("missing notification payload")

// SystemEvent is an OS-delivered notification-open event.
type SystemEvent struct {
	// Action is the broadcast action name. Informational only.
	Action string `json:"action,omitempty"`

	// Extras holds the event's attached bundles, keyed by name.
	Extras map[string]any `json:"extras,omitempty"`
}

// Extractor pulls the payload container out of a SystemEvent.
type Extractor struct {
	// Key is the extras key holding the payload. Empty means DefaultContainerKey.
	Key string
}

// Extract returns the payload attached to ev using DefaultContainerKey.
func Extract(ev SystemEvent) (Payload, error) {
	return Extractor{}.Extract(ev)
}

// Extract returns the payload attached to ev.
//
// It is pure. A container that is absent, nil or not a mapping yields
// ErrMissingPayload; anything inside a present container is accepted.
func (x Extractor) Extract(ev SystemEvent) (Payload, error) {
	key := x.Key
	if key == "" {
		key = DefaultContainerKey
	}

	raw, ok := ev.Extras[key]
	if !ok || raw == nil {
		return Payload{}, fmt.Errorf("extras[%q]: %w", key, ErrMissingPayload)
	}

	switch c := raw.(type) {
	case Payload:
		return New(c.fields), nil
	case Map:
		return New(c), nil
	case map[string]any:
		return FromMap(c), nil
	case map[string]string:
		v, _ := FromAny(c)
		return Payload{fields: v.(Map)}, nil
	default:
		return Payload{}, fmt.Errorf("extras[%q] is %T, not a mapping: %w", key, raw, ErrMissingPayload)
	}
}

// DecodeEvent parses a JSON-encoded system event:
//
//	{"action": "...", "extras": {"notification": {"pinpoint.deeplink": "myapp://promo/42"}}}
//
// Numbers keep their exact text until converted by Extract.
func DecodeEvent(r io.Reader) (SystemEvent, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var ev SystemEvent
	if err := dec.Decode(&ev); err != nil {
		return SystemEvent{}, fmt.Errorf("decode system event: %w", err)
	}
	return ev, nil
}
