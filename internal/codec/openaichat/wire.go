// Package openaichat translates between the OpenAI Chat Completions wire
// format and the UIR (spec §4.1.1), in both directions for whole bodies
// and SSE streams.
package openaichat

type wireRequest struct {
	Model               string              `json:"model"`
	Messages            []wireMessage       `json:"messages"`
	Temperature         *float64            `json:"temperature,omitempty"`
	TopP                *float64            `json:"top_p,omitempty"`
	MaxTokens           *int                `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int                `json:"max_completion_tokens,omitempty"`
	ReasoningEffort     *string             `json:"reasoning_effort,omitempty"`
	Thinking            *wireGLMThinking    `json:"thinking,omitempty"`
	Stop                []string            `json:"stop,omitempty"`
	Stream              bool                `json:"stream,omitempty"`
	Tools               []wireTool          `json:"tools,omitempty"`
	ToolChoice          interface{}         `json:"tool_choice,omitempty"`
	ResponseFormat      *wireResponseFormat `json:"response_format,omitempty"`
}

// wireGLMThinking is GLM's (`glm-*`) nested thinking-config shape (spec
// §4.1.1: "`glm-*`: `thinking` is represented as a nested
// `{type: enabled|disabled, clear_thinking?}` object").
type wireGLMThinking struct {
	Type          string `json:"type"`
	ClearThinking *bool  `json:"clear_thinking,omitempty"`
}

type wireResponseFormat struct {
	Type string `json:"type"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// wireMessage's Content is either a plain string or an array of content
// parts (vision-capable requests), so it's decoded into an interface{} and
// dispatched on shape.
type wireMessage struct {
	Role       string           `json:"role"`
	Content    interface{}      `json:"content,omitempty"`
	ToolCalls  []wireToolCall   `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireContentPart struct {
	Type     string          `json:"type"` // "text" or "image_url"
	Text     string          `json:"text,omitempty"`
	ImageURL *wireImageURL   `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   wireUsage    `json:"usage"`
}

type wireChoice struct {
	Index        int          `json:"index"`
	Message      wireMessage  `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type wireUsage struct {
	PromptTokens            int                    `json:"prompt_tokens"`
	CompletionTokens        int                    `json:"completion_tokens"`
	TotalTokens             int                    `json:"total_tokens"`
	PromptTokensDetails     *wirePromptTokenDetails `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *wireCompletionDetails  `json:"completion_tokens_details,omitempty"`
}

type wirePromptTokenDetails struct {
	CachedTokens int `json:"cached_tokens,omitempty"`
}

type wireCompletionDetails struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

// wireStreamChunk is one SSE "data:" payload for Chat Completions
// streaming.
type wireStreamChunk struct {
	Choices []wireStreamChoice `json:"choices"`
	Usage   *wireUsage         `json:"usage,omitempty"`
}

type wireStreamChoice struct {
	Index        int             `json:"index"`
	Delta        wireStreamDelta `json:"delta"`
	FinishReason *string         `json:"finish_reason"`
}

type wireStreamDelta struct {
	Role             string               `json:"role,omitempty"`
	Content          string               `json:"content,omitempty"`
	ReasoningContent string               `json:"reasoning_content,omitempty"`
	ToolCalls        []wireStreamToolCall `json:"tool_calls,omitempty"`
}

// wireStreamToolCall carries an index because OpenAI's streaming protocol
// interleaves tool-call argument fragments by position rather than
// repeating the call's id on every delta.
type wireStreamToolCall struct {
	Index    int              `json:"index"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function wireFunctionCall `json:"function"`
}
