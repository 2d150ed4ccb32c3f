package pdfval

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// FmtFloat returns the shortest decimal representation of f with at
// most 5 fractional digits, never in scientific notation, matching
// spec's numeric-formatting property (round-trips within 1e-5).
func FmtFloat(f float64) string {
	if f == 0 {
		return "0" // avoid "-0"
	}
	n := math.Pow10(5)
	rounded := math.Round(f*n) / n
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	"\r", `\r`,
	"\n", `\n`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

// EscapeLiteral returns a PDF literal-string token "(...)", escaping
// the characters the spec requires and octal-escaping anything
// outside printable ASCII.
func EscapeLiteral(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, c := range b {
		switch {
		case c == '\\' || c == '(' || c == ')':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\b':
			sb.WriteString(`\b`)
		case c == '\f':
			sb.WriteString(`\f`)
		case c < 0x20 || c > 0x7e:
			sb.WriteByte('\\')
			sb.WriteString(octal3(c))
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func octal3(b byte) string {
	s := strconv.FormatUint(uint64(b), 8)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// EscapeHex returns a PDF hex-string token "<...>", uppercase as the
// writer's numeric/string emission rules require.
func EscapeHex(b []byte) string {
	return "<" + strings.ToUpper(hex.EncodeToString(b)) + ">"
}

// isRegular reports whether c needs no #xx escape in a name.
func isRegular(c byte) bool {
	switch c {
	case 0x00, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return false
	}
	return c > 0x20 && c < 0x7f
}

// FormatName returns the "/Name" token for n, escaping bytes outside
// the printable-name set with #xx.
func FormatName(n Name) string {
	var sb strings.Builder
	sb.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if isRegular(c) {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('#')
			sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return sb.String()
}

// DecodeName reverses the #xx escaping found in a name token's raw
// bytes (without the leading '/'), returning the decoded name.
func DecodeName(raw []byte) Name {
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := hex.DecodeString(string(raw[i+1 : i+3])); err == nil && len(v) == 1 {
				out = append(out, v[0])
				i += 2
				continue
			}
		}
		out = append(out, raw[i])
	}
	return Name(out)
}
