package pdfdoc

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeInput normalizes a bytes-bearing argument into raw bytes, per
// spec section 6's three accepted shapes: a raw byte buffer, a base64
// string (whitespace ignored), or a data URI
// "data:<mime>;base64,<payload>" whose MIME type is never validated
// against the payload's actual content.
func DecodeInput(input interface{}) ([]byte, error) {
	switch v := input.(type) {
	case []byte:
		return v, nil
	case string:
		return decodeStringInput(v)
	default:
		return nil, newError(InvalidInputType, fmt.Sprintf("unsupported input type %T", input))
	}
}

func decodeStringInput(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ";base64,"); idx >= 0 {
			payload = s[idx+len(";base64,"):]
		} else {
			return nil, newError(InvalidInputType, "data URI missing \";base64,\" marker")
		}
	}
	payload = stripWhitespace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err2 := base64.RawStdEncoding.DecodeString(payload); err2 == nil {
			return data, nil
		}
		return nil, wrapError(InvalidInputType, fmt.Errorf("decoding base64 input: %w", err))
	}
	return data, nil
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
