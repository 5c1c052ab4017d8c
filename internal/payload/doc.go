// Package payload models the notification payload carried by an
// OS-delivered notification-open event, and extracts it from the raw event.
//
// A Payload is an immutable mapping of string keys to constrained values
// (String, Int, Bool, List, Map). It is created when a system event arrives,
// owned by one pipeline invocation and discarded after delivery.
//
// # Canonical Form
//
// Payloads have one canonical JSON rendering (RFC 8785 key ordering, NFC
// normalized strings, no HTML escaping). The canonical bytes back both the
// content digest used for log correlation and the dataJSON field handed to
// the application layer, so two equal payloads always render identically.
//
// # Extraction
//
// Extract pulls the payload out of a SystemEvent's extras under the
// configured key (default "notification"). Only a fully absent container is
// an error (ErrMissingPayload); absent optional fields such as the deep link
// never fail extraction.
package payload
