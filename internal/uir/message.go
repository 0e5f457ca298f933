// Package uir defines the Unified Intermediate Representation used to
// translate chat-completion requests, responses, and stream chunks between
// vendor wire formats.
package uir

// Role identifies the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is an ordered sequence of content parts sent by one role.
type Message struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// PartType discriminates the ContentPart tagged union.
type PartType string

const (
	PartText       PartType = "text"
	PartImage      PartType = "image"
	PartToolCall   PartType = "tool_call"
	PartToolResult PartType = "tool_result"
	PartThinking   PartType = "thinking"
)

// ContentPart is a tagged union over the part kinds the UIR supports.
// Exactly one of the type-specific fields is populated, selected by Type.
type ContentPart struct {
	Type PartType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// image — invariant: exactly one of Data / URL is set.
	MimeType string `json:"mimeType,omitempty"`
	Data     []byte `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`

	// tool_call
	ToolCallID   string      `json:"toolCallId,omitempty"`
	ToolName     string      `json:"toolName,omitempty"`
	Arguments    interface{} `json:"arguments,omitempty"`
	RawArguments string      `json:"rawArguments,omitempty"`

	// tool_result — invariant: a RoleTool message carries exactly one of these parts.
	ToolResultForID string        `json:"toolResultForId,omitempty"`
	ResultParts     []ContentPart `json:"resultParts,omitempty"`
	IsError         bool          `json:"isError,omitempty"`

	// thinking
	Signature string `json:"signature,omitempty"`
	Redacted  bool   `json:"redacted,omitempty"`

	// attaches to any part
	CacheControl *CacheControl `json:"cacheControl,omitempty"`
}

// CacheControl carries a vendor cache hint (Anthropic prompt caching, etc.).
type CacheControl struct {
	Type string `json:"type,omitempty"`
	TTL  string `json:"ttl,omitempty"`
}

// Text is a constructor for a plain text ContentPart.
func Text(s string) ContentPart { return ContentPart{Type: PartText, Text: s} }

// SystemBlock is a richer system-prompt entry carrying cache hints, used
// alongside the plain System string when a vendor supports both.
type SystemBlock struct {
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cacheControl,omitempty"`
}
