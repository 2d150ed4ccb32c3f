package pdffont

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/text/encoding/unicode"
)

var utf16Enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()

func runesToHex(text []rune) string {
	var sb bytes.Buffer
	for _, r := range text {
		b, _ := utf16Enc.Bytes([]byte(string(r)))
		sb.WriteString(hex.EncodeToString(b))
	}
	return sb.String()
}

// writeAdobeIdentityUnicodeCMap renders a glyph(or CID)->unicode
// mapping as a PostScript-style CMap resource, ready to back a
// /ToUnicode stream.
func writeAdobeIdentityUnicodeCMap(dict map[uint32][]rune) []byte {
	keys := make([]uint32, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo
<< /Registry (Adobe)
/Ordering (UCS)
/Supplement 0
>>
def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <ffff>
endcodespacerange
%d beginbfchar
`, len(keys))

	for _, k := range keys {
		fmt.Fprintf(&buf, "<%04x> <%s>\n", k, runesToHex(dict[k]))
	}

	buf.WriteString(`endbfchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end`)

	return buf.Bytes()
}
