// Package detector classifies an incoming client payload into one of the
// four supported wire formats (spec §4.2, C3), purely from its JSON shape —
// no header sniffing, no I/O, same verdict for the same bytes every time.
package detector

import "encoding/json"

// Format names a client wire format this gateway can parse.
type Format string

const (
	FormatGemini          Format = "gemini"
	FormatOpenAIResponses Format = "openai_responses"
	FormatAnthropic       Format = "anthropic"
	FormatOpenAIChat      Format = "openai_chat"
)

// responsesOnlyKeys are present only in OpenAI's Responses API payload
// shape, never in Chat Completions or Anthropic Messages (spec §4.1.2).
var responsesOnlyKeys = []string{
	"instructions", "max_output_tokens", "previous_response_id", "reasoning", "truncation", "store",
}

// Detect classifies raw JSON body bytes per the ordered test list of spec
// §4.2. Malformed JSON is treated as an empty object, which falls through
// to the default (openai_chat).
func Detect(body []byte) Format {
	var payload map[string]json.RawMessage
	_ = json.Unmarshal(body, &payload)

	if _, ok := payload["contents"]; ok {
		return FormatGemini
	}

	_, hasInput := payload["input"]
	_, hasMessages := payload["messages"]
	if hasInput && !hasMessages {
		return FormatOpenAIResponses
	}
	for _, key := range responsesOnlyKeys {
		if _, ok := payload[key]; ok {
			return FormatOpenAIResponses
		}
	}

	if hasMessages {
		if _, ok := payload["system"]; ok {
			return FormatAnthropic
		}
		return FormatOpenAIChat
	}

	return FormatOpenAIChat
}
