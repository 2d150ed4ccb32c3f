package pdfval

import (
	"strconv"
	"strings"
)

// Format renders v as PDF object syntax. It never emits the
// "stream"/"endstream" body: a Stream's Content is written by the
// caller (see pdfwrite), since only an indirect object may carry one
// and its /Length is set from the content's length at write time.
func Format(v Value) string {
	var sb strings.Builder
	format(&sb, v)
	return sb.String()
}

func format(sb *strings.Builder, v Value) {
	if v == nil {
		v = Null{}
	}
	switch t := v.(type) {
	case Null:
		sb.WriteString("null")
	case Bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Int:
		sb.WriteString(strconv.FormatInt(int64(t), 10))
	case Real:
		sb.WriteString(FmtFloat(float64(t)))
	case Name:
		sb.WriteString(FormatName(t))
	case String:
		if t.Kind == HexString {
			sb.WriteString(EscapeHex(t.Bytes))
		} else {
			sb.WriteString(EscapeLiteral(t.Bytes))
		}
	case Ref:
		sb.WriteString(t.String())
	case Array:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(' ')
			}
			format(sb, e)
		}
		sb.WriteByte(']')
	case Dict:
		sb.WriteString("<<")
		t.Range(func(name Name, val Value) {
			sb.WriteString(FormatName(name))
			sb.WriteByte(' ')
			format(sb, val)
			sb.WriteByte(' ')
		})
		sb.WriteString(">>")
	case Stream:
		// dictionary only; body is written by the caller
		format(sb, t.Dict)
	default:
		sb.WriteString("null")
	}
}
