package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrDuplicateKey is returned when two map keys share an NFC form.
var ErrDuplicateKey = errors.New("duplicate key after normalization")

// DomainPayload separates payload digests from any other hash in the system.
const DomainPayload = "pushopen/payload/v1"

// MarshalCanonical produces RFC 8785 canonical JSON for a payload value.
//
// Differences from encoding/json:
//  1. Map keys are sorted by UTF-16 code units
//  2. No HTML escaping; U+2028 and U+2029 are written literally
//  3. Strings (keys included) are NFC normalized; keys are sorted after
//     normalization and must stay unique
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case String:
		writeCanonicalString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Map:
		keys, raw, err := normalizedKeys(val)
		if err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[raw[k]]); err != nil {
				return fmt.Errorf("map[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported payload value: %T", v)
	}
	return nil
}

// normalizedKeys returns the NFC forms of m's keys in UTF-16 order, plus a
// lookup back to the stored key. Two keys with the same NFC form are an error.
func normalizedKeys(m Map) ([]string, map[string]string, error) {
	raw := make(map[string]string, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		nk := norm.NFC.String(k)
		if prev, dup := raw[nk]; dup {
			return nil, nil, fmt.Errorf("%w: %q and %q normalize to %q", ErrDuplicateKey, prev, k, nk)
		}
		raw[nk] = k
		keys = append(keys, nk)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys, raw, nil
}

// writeCanonicalString escapes only what RFC 8785 requires: the quote,
// the backslash and control characters below U+0020.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch {
		case r == utf8.RuneError && size == 1:
			buf.WriteString("\uFFFD")
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(buf, `\u%04x`, r)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
