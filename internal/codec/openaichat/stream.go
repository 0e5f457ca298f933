package openaichat

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai/internal/sse"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// toolCallState tracks one in-flight streamed tool call, keyed by its
// OpenAI delta index (spec §4.1.1: the id/name arrive once on the first
// delta at that index, subsequent deltas at the same index carry only
// argument fragments).
type toolCallState struct {
	id   string
	name string
}

// StreamDecoder translates an OpenAI Chat Completions SSE body into UIR
// chunks.
type StreamDecoder struct {
	dec       *sse.Decoder
	toolCalls map[int]*toolCallState
	textIndex int
	done      bool
}

// NewStreamDecoder wraps r for OpenAI Chat SSE-to-UIR translation.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: sse.NewDecoder(r), toolCalls: make(map[int]*toolCallState)}
}

// Next returns the next UIR chunk, or io.EOF once the stream ends.
func (s *StreamDecoder) Next() (*uir.Chunk, error) {
	if s.done {
		return nil, io.EOF
	}
	event, err := s.dec.Next()
	if err != nil {
		return nil, err
	}
	if sse.IsDone(event) {
		s.done = true
		return &uir.Chunk{Type: uir.ChunkDone}, nil
	}

	var chunk wireStreamChunk
	if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
		return nil, uir.SchemaMismatch("openai_chat", err)
	}

	if len(chunk.Choices) == 0 {
		if chunk.Usage != nil {
			return &uir.Chunk{Type: uir.ChunkUsage, Usage: mapUsage(*chunk.Usage)}, nil
		}
		return s.Next()
	}

	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		idx := s.textIndex
		return &uir.Chunk{
			Type: uir.ChunkContent, BlockIndex: &idx, BlockType: uir.PartText,
			Delta: &uir.Delta{ContentPart: uir.Text(choice.Delta.Content)},
		}, nil
	}

	if choice.Delta.ReasoningContent != "" {
		idx := s.textIndex
		return &uir.Chunk{
			Type: uir.ChunkThinking, BlockIndex: &idx, BlockType: uir.PartThinking,
			Delta: &uir.Delta{ContentPart: uir.ContentPart{Type: uir.PartThinking, Text: choice.Delta.ReasoningContent}},
		}, nil
	}

	if len(choice.Delta.ToolCalls) > 0 {
		tc := choice.Delta.ToolCalls[0]
		state, seen := s.toolCalls[tc.Index]
		if !seen {
			state = &toolCallState{id: tc.ID, name: tc.Function.Name}
			s.toolCalls[tc.Index] = state
		}
		idx := tc.Index
		return &uir.Chunk{
			Type: uir.ChunkToolCall, BlockIndex: &idx, BlockType: uir.PartToolCall,
			Delta: &uir.Delta{
				ContentPart: uir.ContentPart{Type: uir.PartToolCall, ToolCallID: state.id, ToolName: state.name},
				PartialJSON: tc.Function.Arguments,
			},
		}, nil
	}

	if choice.FinishReason != nil {
		var usage *uir.Usage
		if chunk.Usage != nil {
			usage = mapUsage(*chunk.Usage)
		}
		return &uir.Chunk{Type: uir.ChunkUsage, StopReason: mapFinishReason(*choice.FinishReason), Usage: usage}, nil
	}

	return s.Next()
}

// StreamEncoder translates UIR chunks into an OpenAI Chat Completions SSE
// body.
type StreamEncoder struct {
	enc         *sse.Encoder
	model       string
	doneWritten bool
}

// NewStreamEncoder wraps w for UIR-to-OpenAI-SSE translation.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	return &StreamEncoder{enc: sse.NewEncoder(w)}
}

// Write emits the OpenAI SSE data frame corresponding to chunk.
func (e *StreamEncoder) Write(chunk *uir.Chunk) error {
	switch chunk.Type {
	case uir.ChunkContent:
		if chunk.Delta == nil {
			return nil
		}
		data, _ := json.Marshal(wireStreamChunk{
			Choices: []wireStreamChoice{{Delta: wireStreamDelta{Content: chunk.Delta.Text}}},
		})
		return e.enc.WriteData(string(data))

	case uir.ChunkToolCall:
		if chunk.Delta == nil {
			return nil
		}
		data, _ := json.Marshal(wireStreamChunk{
			Choices: []wireStreamChoice{{
				Delta: wireStreamDelta{
					ToolCalls: []wireStreamToolCall{{
						Index: blockIndex(chunk), ID: chunk.Delta.ToolCallID, Type: "function",
						Function: wireFunctionCall{Name: chunk.Delta.ToolName, Arguments: chunk.Delta.PartialJSON},
					}},
				},
			}},
		})
		return e.enc.WriteData(string(data))

	case uir.ChunkThinking:
		if chunk.Delta == nil {
			return nil
		}
		data, _ := json.Marshal(wireStreamChunk{
			Choices: []wireStreamChoice{{Delta: wireStreamDelta{ReasoningContent: chunk.Delta.Text}}},
		})
		return e.enc.WriteData(string(data))

	case uir.ChunkUsage:
		reason := unmapFinishReason(chunk.StopReason)
		data, _ := json.Marshal(wireStreamChunk{
			Choices: []wireStreamChoice{{FinishReason: &reason}},
		})
		return e.enc.WriteData(string(data))

	case uir.ChunkDone:
		e.doneWritten = true
		return e.enc.WriteDone()
	}
	return nil
}

// Close writes the terminal "[DONE]" frame if it hasn't been written yet
// (a ChunkDone Write already does this; Close is a safety net for callers
// that stop early).
func (e *StreamEncoder) Close() error {
	if e.doneWritten {
		return nil
	}
	e.doneWritten = true
	return e.enc.WriteDone()
}

func blockIndex(chunk *uir.Chunk) int {
	if chunk.BlockIndex != nil {
		return *chunk.BlockIndex
	}
	return 0
}
