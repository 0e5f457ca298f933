// Package openairesp translates between the OpenAI Responses API wire
// format and the UIR (spec §4.1.2), in both directions for whole bodies
// and SSE streams. Grounded on the teacher's
// pkg/providers/openresponses/api_types.go wire types, since that package
// (unlike pkg/providers/openai/responses, which only models the output
// side for an agentic tool-call loop) already carries the full
// request/response/stream-event shapes this gateway needs in both
// directions.
package openairesp

type wireRequest struct {
	Model             string            `json:"model"`
	Input             []wireInputItem   `json:"input"`
	Instructions      string            `json:"instructions,omitempty"`
	MaxOutputTokens   *int              `json:"max_output_tokens,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	TopP              *float64          `json:"top_p,omitempty"`
	Tools             []wireTool        `json:"tools,omitempty"`
	ToolChoice        interface{}       `json:"tool_choice,omitempty"`
	Reasoning         *wireReasoning    `json:"reasoning,omitempty"`
	Stream            bool              `json:"stream,omitempty"`
	Store             *bool             `json:"store,omitempty"`
	Truncation        string            `json:"truncation,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
}

type wireReasoning struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type wireTool struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// wireInputItem is a tagged union over every shape the Responses API's
// flattened "input" array carries: messages, function calls, and function
// call outputs all live in the same ordered array (spec §4.1.2).
type wireInputItem struct {
	Type string `json:"type"`

	// message
	Role    string      `json:"role,omitempty"`
	Content interface{} `json:"content,omitempty"` // string or []wireContentPart

	// function_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// function_call_output
	Output interface{} `json:"output,omitempty"` // string or []wireContentPart

	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

type wireContentPart struct {
	Type     string `json:"type"` // input_text / output_text / input_image
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type wireResponse struct {
	ID     string       `json:"id"`
	Object string       `json:"object"`
	Model  string       `json:"model"`
	Status string       `json:"status"`
	Output []wireOutputItem `json:"output"`
	Usage  *wireUsage   `json:"usage,omitempty"`
}

type wireOutputItem struct {
	Type    string            `json:"type"`
	ID      string            `json:"id,omitempty"`
	Role    string            `json:"role,omitempty"`
	Content []wireContentPart `json:"content,omitempty"`
	Status  string            `json:"status,omitempty"`

	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	Summary          []wireContentPart `json:"summary,omitempty"`
	EncryptedContent string            `json:"encrypted_content,omitempty"`
}

type wireUsage struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	InputTokensDetails  *wireInputTokenDetail `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *wireOutputTokenDetail `json:"output_tokens_details,omitempty"`
}

type wireInputTokenDetail struct {
	CachedTokens int `json:"cached_tokens,omitempty"`
}

type wireOutputTokenDetail struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

// wireStreamEvent is one SSE "data:" payload for Responses API streaming
// (spec §4.1.2/§6's SSE framing note: Responses streams carry an
// "event:"-equivalent "type" field inside the JSON body itself rather than
// the SSE "event:" line, so the decoder reads it from Type).
type wireStreamEvent struct {
	Type         string          `json:"type"`
	Response     *wireResponse   `json:"response,omitempty"`
	OutputIndex  int             `json:"output_index,omitempty"`
	Item         *wireOutputItem `json:"item,omitempty"`
	ItemID       string          `json:"item_id,omitempty"`
	ContentIndex int             `json:"content_index,omitempty"`
	Delta        string          `json:"delta,omitempty"`
	Text         string          `json:"text,omitempty"`
	CallID       string          `json:"call_id,omitempty"`
	Arguments    string          `json:"arguments,omitempty"`
}
