package schemanorm

import (
	"strconv"
	"strings"
	"unicode"
)

// encodedSubstitutions are applied in order; longer/more-specific sequences
// must come before ones they could be confused with during decode.
var encodedSubstitutions = []struct {
	literal string
	encoded string
}{
	{"/", "__slash__"},
	{" ", "__space__"},
}

// EncodeToolName reversibly encodes a tool name so it only contains
// characters the Gemini "antigravity" endpoint accepts ([A-Za-z0-9_.:-]),
// per spec §4.3. Decode(Encode(n)) == n for all names.
func EncodeToolName(name string) string {
	encoded := name
	for _, sub := range encodedSubstitutions {
		encoded = strings.ReplaceAll(encoded, sub.literal, sub.encoded)
	}

	var out strings.Builder
	for _, r := range encoded {
		if isAllowedToolNameRune(r) {
			out.WriteRune(r)
		} else {
			out.WriteString("__u" + strconv.Itoa(int(r)) + "__")
		}
	}
	result := out.String()

	if result == "" {
		return prefixMarker
	}
	if first := rune(result[0]); !unicode.IsLetter(first) {
		result = prefixMarker + result
	}
	return result
}

// prefixMarker is prepended to names that begin with a non-letter rune
// (spec §4.3: "Names that begin with a non-letter get an `_` prefix").
// A distinct marker (rather than a bare "_") keeps the prefix unambiguous
// on decode even when the original name itself began with "_".
const prefixMarker = "__pfx__"

// DecodeToolName reverses EncodeToolName, applied to function-call names
// flowing back from upstream.
func DecodeToolName(encoded string) string {
	name := strings.TrimPrefix(encoded, prefixMarker)
	name = decodeUnicodeEscapes(name)

	for i := len(encodedSubstitutions) - 1; i >= 0; i-- {
		sub := encodedSubstitutions[i]
		name = strings.ReplaceAll(name, sub.encoded, sub.literal)
	}
	return name
}

func decodeUnicodeEscapes(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "__u") {
			end := strings.Index(s[i+3:], "__")
			if end >= 0 {
				numStr := s[i+3 : i+3+end]
				if n, err := strconv.Atoi(numStr); err == nil {
					out.WriteRune(rune(n))
					i += 3 + end + 2
					continue
				}
			}
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

func isAllowedToolNameRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == ':' || r == '-':
		return true
	default:
		return false
	}
}
