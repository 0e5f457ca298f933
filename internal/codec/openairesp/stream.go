package openairesp

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai/internal/sse"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// callState tracks one in-flight streamed function call, keyed by the
// Responses API's output_index — "response.output_item.added" carries the
// id/name once, and subsequent "response.function_call_arguments.delta"
// events at the same index carry only argument fragments.
type callState struct {
	id   string
	name string
}

// StreamDecoder translates an OpenAI Responses API SSE body into UIR
// chunks.
type StreamDecoder struct {
	dec   *sse.Decoder
	calls map[int]*callState
	done  bool
}

// NewStreamDecoder wraps r for Responses SSE-to-UIR translation.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: sse.NewDecoder(r), calls: make(map[int]*callState)}
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
	if event.Data == "" {
		return s.Next()
	}

	var ev wireStreamEvent
	if err := json.Unmarshal([]byte(event.Data), &ev); err != nil {
		return nil, uir.SchemaMismatch("openai_responses", err)
	}

	switch ev.Type {
	case "response.output_text.delta":
		idx := ev.OutputIndex
		return &uir.Chunk{
			Type: uir.ChunkContent, BlockIndex: &idx, BlockType: uir.PartText,
			Delta: &uir.Delta{ContentPart: uir.Text(ev.Delta)},
		}, nil

	case "response.reasoning_summary_text.delta":
		idx := ev.OutputIndex
		return &uir.Chunk{
			Type: uir.ChunkThinking, BlockIndex: &idx, BlockType: uir.PartThinking,
			Delta: &uir.Delta{ContentPart: uir.ContentPart{Type: uir.PartThinking, Text: ev.Delta}},
		}, nil

	case "response.output_item.added":
		if ev.Item != nil && ev.Item.Type == "function_call" {
			s.calls[ev.OutputIndex] = &callState{id: ev.Item.CallID, name: ev.Item.Name}
		}
		return s.Next()

	case "response.function_call_arguments.delta":
		state := s.calls[ev.OutputIndex]
		idx := ev.OutputIndex
		delta := &uir.Delta{PartialJSON: ev.Delta}
		if state != nil {
			delta.ContentPart = uir.ContentPart{Type: uir.PartToolCall, ToolCallID: state.id, ToolName: state.name}
		}
		return &uir.Chunk{Type: uir.ChunkToolCall, BlockIndex: &idx, BlockType: uir.PartToolCall, Delta: delta}, nil

	case "response.completed", "response.incomplete", "response.failed":
		var stopReason uir.StopReason
		var usage *uir.Usage
		if ev.Response != nil {
			stopReason = uir.StopEndTurn
			if ev.Response.Status == "incomplete" {
				stopReason = uir.StopMaxTokens
			}
			for _, item := range ev.Response.Output {
				if item.Type == "function_call" {
					stopReason = uir.StopToolUse
				}
			}
			usage = mapUsage(ev.Response.Usage)
		}
		s.done = true
		return &uir.Chunk{Type: uir.ChunkUsage, StopReason: stopReason, Usage: usage}, nil

	default:
		return s.Next()
	}
}

// StreamEncoder translates UIR chunks into an OpenAI Responses API SSE
// body.
type StreamEncoder struct {
	enc    *sse.Encoder
	opened map[int]bool
}

// NewStreamEncoder wraps w for UIR-to-Responses-SSE translation.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	return &StreamEncoder{enc: sse.NewEncoder(w), opened: make(map[int]bool)}
}

// Write emits the Responses SSE data frame(s) corresponding to chunk.
func (e *StreamEncoder) Write(chunk *uir.Chunk) error {
	switch chunk.Type {
	case uir.ChunkContent:
		if chunk.Delta == nil {
			return nil
		}
		return e.writeEvent(wireStreamEvent{
			Type: "response.output_text.delta", OutputIndex: blockIndex(chunk), Delta: chunk.Delta.Text,
		})

	case uir.ChunkThinking:
		if chunk.Delta == nil {
			return nil
		}
		return e.writeEvent(wireStreamEvent{
			Type: "response.reasoning_summary_text.delta", OutputIndex: blockIndex(chunk), Delta: chunk.Delta.Text,
		})

	case uir.ChunkToolCall:
		if chunk.Delta == nil {
			return nil
		}
		idx := blockIndex(chunk)
		if !e.opened[idx] {
			e.opened[idx] = true
			if err := e.writeEvent(wireStreamEvent{
				Type: "response.output_item.added", OutputIndex: idx,
				Item: &wireOutputItem{Type: "function_call", CallID: chunk.Delta.ToolCallID, Name: chunk.Delta.ToolName},
			}); err != nil {
				return err
			}
		}
		return e.writeEvent(wireStreamEvent{
			Type: "response.function_call_arguments.delta", OutputIndex: idx,
			CallID: chunk.Delta.ToolCallID, Delta: chunk.Delta.PartialJSON,
		})

	case uir.ChunkUsage:
		return e.writeEvent(wireStreamEvent{
			Type: "response.completed",
			Response: &wireResponse{
				Status: responseStatus(chunk.StopReason),
				Usage:  transformUsage(chunk.Usage),
			},
		})

	case uir.ChunkDone:
		return nil
	}
	return nil
}

func (e *StreamEncoder) writeEvent(ev wireStreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return e.enc.WriteData(string(data))
}

func responseStatus(reason uir.StopReason) string {
	if reason == uir.StopMaxTokens {
		return "incomplete"
	}
	return "completed"
}

func transformUsage(u *uir.Usage) *wireUsage {
	if u == nil {
		return nil
	}
	return &wireUsage{InputTokens: int(u.InputTokens), OutputTokens: int(u.OutputTokens), TotalTokens: int(u.TotalTokens)}
}

// Close is a no-op: the terminal "response.completed" event is written by
// the ChunkUsage Write call already in the translation pipeline.
func (e *StreamEncoder) Close() error { return nil }

func blockIndex(chunk *uir.Chunk) int {
	if chunk.BlockIndex != nil {
		return *chunk.BlockIndex
	}
	return 0
}
