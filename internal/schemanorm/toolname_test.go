package schemanorm

import "testing"

func TestToolName_RoundTrip(t *testing.T) {
	names := []string{
		"get_weather",
		"search/web",
		"run shell command",
		"123_starts_with_digit",
		"_already_underscored",
		"send/email with spaces",
	}
	for _, n := range names {
		encoded := EncodeToolName(n)
		decoded := DecodeToolName(encoded)
		if decoded != n {
			t.Errorf("round trip failed: name=%q encoded=%q decoded=%q", n, encoded, decoded)
		}
	}
}

func TestToolName_EncodedIsAllowedCharset(t *testing.T) {
	encoded := EncodeToolName("search/web ☃ test")
	for _, r := range encoded {
		if !isAllowedToolNameRune(r) {
			t.Errorf("encoded name %q contains disallowed rune %q", encoded, r)
		}
	}
}
