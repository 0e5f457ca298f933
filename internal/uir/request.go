package uir

// Effort is the requested reasoning effort for thinking-capable models.
type Effort string

const (
	EffortNone   Effort = "none"
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Thinking controls extended-reasoning behavior.
type Thinking struct {
	Enabled         bool    `json:"enabled"`
	Budget          *int    `json:"budget,omitempty"`
	Effort          *Effort `json:"effort,omitempty"`
	PreserveContext bool    `json:"preserveContext,omitempty"`
	IncludeThoughts bool    `json:"includeThoughts,omitempty"`
}

// Config carries the vendor-neutral sampling/limit knobs.
type Config struct {
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"topP,omitempty"`
	TopK           *int     `json:"topK,omitempty"`
	StopSequences  []string `json:"stopSequences,omitempty"`
}

// Request is the Unified Intermediate Representation of a chat-completion
// request (UIR-Req in spec terms).
type Request struct {
	Messages     []Message              `json:"messages"`
	System       string                 `json:"system,omitempty"`
	SystemBlocks []SystemBlock          `json:"systemBlocks,omitempty"`
	Tools        []Tool                 `json:"tools,omitempty"`
	ToolChoice   *ToolChoice             `json:"toolChoice,omitempty"`
	Config       Config                  `json:"config"`
	Thinking     *Thinking               `json:"thinking,omitempty"`
	Metadata     map[string]interface{}  `json:"metadata,omitempty"`
	Stream       bool                    `json:"stream"`

	// RequestedModel is the model string the client asked for, preserved
	// verbatim through parsing so the router (C7) can resolve it. The
	// request handler overwrites it with the resolved upstream model id
	// before each upstream call.
	RequestedModel string `json:"-"`
}

// FindToolCall returns the tool_call part with the given id across all
// messages, used to validate the "tool_result references an earlier
// tool_call" invariant.
func (r *Request) FindToolCall(id string) (ContentPart, bool) {
	for _, m := range r.Messages {
		for _, p := range m.Parts {
			if p.Type == PartToolCall && p.ToolCallID == id {
				return p, true
			}
		}
	}
	return ContentPart{}, false
}
