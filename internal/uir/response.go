package uir

// StopReason is the vendor-neutral reason generation ended.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopMaxTokens    StopReason = "max_tokens"
	StopToolUse      StopReason = "tool_use"
	StopStopSequence StopReason = "stop_sequence"
	StopContentFilter StopReason = "content_filter"
	StopError        StopReason = "error"
	StopNull         StopReason = ""
)

// Usage reports token/credit accounting for a request.
type Usage struct {
	InputTokens    int64 `json:"inputTokens"`
	OutputTokens   int64 `json:"outputTokens"`
	TotalTokens    int64 `json:"totalTokens,omitempty"`
	ThinkingTokens int64 `json:"thinkingTokens,omitempty"`
	CachedTokens   int64 `json:"cachedTokens,omitempty"`
	Credits        float64 `json:"credits,omitempty"`
}

// ThinkingBlock is one unit of extended-reasoning output carried on a Response.
type ThinkingBlock struct {
	Text      string `json:"text"`
	Signature string `json:"signature,omitempty"`
	Redacted  bool   `json:"redacted,omitempty"`
}

// Response is the Unified Intermediate Representation of a non-streaming
// chat-completion reply (UIR-Res in spec terms).
type Response struct {
	ID         string          `json:"id,omitempty"`
	Content    []ContentPart   `json:"content"`
	StopReason StopReason      `json:"stopReason"`
	Usage      *Usage          `json:"usage,omitempty"`
	Model      string          `json:"model,omitempty"`
	Thinking   []ThinkingBlock `json:"thinking,omitempty"`
}

// ChunkType discriminates the stream-chunk tagged union.
type ChunkType string

const (
	ChunkContent    ChunkType = "content"
	ChunkToolCall   ChunkType = "tool_call"
	ChunkToolResult ChunkType = "tool_result"
	ChunkThinking   ChunkType = "thinking"
	ChunkUsage      ChunkType = "usage"
	ChunkBlockStop  ChunkType = "block_stop"
	ChunkDone       ChunkType = "done"
	ChunkError      ChunkType = "error"
)

// Delta is a partial ContentPart plus an incremental JSON fragment for
// in-flight tool-call arguments ("partialJson" in spec terms). Consumers
// concatenate PartialJSON fragments across chunks sharing a BlockIndex
// before parsing the result as JSON.
type Delta struct {
	ContentPart
	PartialJSON string `json:"partialJson,omitempty"`
}

// Chunk is one unit of a streaming reply (UIR-Chunk in spec terms).
type Chunk struct {
	Type       ChunkType  `json:"type"`
	BlockIndex *int       `json:"blockIndex,omitempty"`
	BlockType  PartType   `json:"blockType,omitempty"`
	Delta      *Delta     `json:"delta,omitempty"`
	Usage      *Usage     `json:"usage,omitempty"`
	StopReason StopReason `json:"stopReason,omitempty"`
	Error      string     `json:"error,omitempty"`
	Model      string     `json:"model,omitempty"`
}
