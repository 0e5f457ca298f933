package anthropic

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai/internal/sse"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// blockState tracks an in-flight content block across SSE events, mirroring
// the teacher's streamContentBlock bookkeeping: a block opens at
// content_block_start and closes at content_block_stop.
type blockState struct {
	partType uir.PartType
	toolID   string
	toolName string
}

// StreamDecoder translates an Anthropic Messages SSE body into UIR chunks.
type StreamDecoder struct {
	dec    *sse.Decoder
	blocks map[int]*blockState

	inputTokens      int64
	cacheReadTokens  int64
	cacheWriteTokens int64

	err error
}

// NewStreamDecoder wraps r for Anthropic SSE-to-UIR translation.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: sse.NewDecoder(r), blocks: make(map[int]*blockState)}
}

// Next returns the next UIR chunk, or io.EOF once the stream ends.
func (s *StreamDecoder) Next() (*uir.Chunk, error) {
	if s.err != nil {
		return nil, s.err
	}

	event, err := s.dec.Next()
	if err != nil {
		s.err = err
		return nil, err
	}

	switch event.Event {
	case "ping":
		return s.Next()

	case "message_start":
		var payload struct {
			Message struct {
				Usage struct {
					InputTokens              int64 `json:"input_tokens"`
					CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
					CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
				} `json:"usage"`
			} `json:"message"`
		}
		if json.Unmarshal([]byte(event.Data), &payload) == nil {
			s.inputTokens = payload.Message.Usage.InputTokens
			s.cacheReadTokens = payload.Message.Usage.CacheReadInputTokens
			s.cacheWriteTokens = payload.Message.Usage.CacheCreationInputTokens
		}
		return s.Next()

	case "content_block_start":
		var start struct {
			Index        int `json:"index"`
			ContentBlock struct {
				Type string `json:"type"`
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"content_block"`
		}
		if err := json.Unmarshal([]byte(event.Data), &start); err != nil {
			return s.Next()
		}
		idx := start.Index
		switch start.ContentBlock.Type {
		case "tool_use":
			s.blocks[idx] = &blockState{partType: uir.PartToolCall, toolID: start.ContentBlock.ID, toolName: start.ContentBlock.Name}
		case "thinking", "redacted_thinking":
			s.blocks[idx] = &blockState{partType: uir.PartThinking}
		default:
			s.blocks[idx] = &blockState{partType: uir.PartText}
		}
		blockType := s.blocks[idx].partType
		return &uir.Chunk{Type: uir.ChunkContent, BlockIndex: &idx, BlockType: blockType}, nil

	case "content_block_delta":
		var delta struct {
			Index int `json:"index"`
			Delta struct {
				Type        string `json:"type"`
				Text        string `json:"text"`
				PartialJSON string `json:"partial_json"`
				Thinking    string `json:"thinking"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(event.Data), &delta); err != nil {
			return nil, uir.SchemaMismatch("anthropic", err)
		}
		idx := delta.Index

		switch delta.Delta.Type {
		case "text_delta":
			return &uir.Chunk{
				Type: uir.ChunkContent, BlockIndex: &idx, BlockType: uir.PartText,
				Delta: &uir.Delta{ContentPart: uir.Text(delta.Delta.Text)},
			}, nil
		case "input_json_delta":
			if delta.Delta.PartialJSON == "" {
				return s.Next()
			}
			block := s.blocks[idx]
			toolID, toolName := "", ""
			if block != nil {
				toolID, toolName = block.toolID, block.toolName
			}
			return &uir.Chunk{
				Type: uir.ChunkToolCall, BlockIndex: &idx, BlockType: uir.PartToolCall,
				Delta: &uir.Delta{
					ContentPart: uir.ContentPart{Type: uir.PartToolCall, ToolCallID: toolID, ToolName: toolName},
					PartialJSON: delta.Delta.PartialJSON,
				},
			}, nil
		case "thinking_delta":
			return &uir.Chunk{
				Type: uir.ChunkThinking, BlockIndex: &idx, BlockType: uir.PartThinking,
				Delta: &uir.Delta{ContentPart: uir.ContentPart{Type: uir.PartThinking, Text: delta.Delta.Thinking}},
			}, nil
		case "signature_delta":
			return s.Next()
		}
		return s.Next()

	case "content_block_stop":
		var stop struct {
			Index int `json:"index"`
		}
		if err := json.Unmarshal([]byte(event.Data), &stop); err != nil {
			return s.Next()
		}
		delete(s.blocks, stop.Index)
		idx := stop.Index
		return &uir.Chunk{Type: uir.ChunkBlockStop, BlockIndex: &idx}, nil

	case "message_delta":
		var delta struct {
			Delta struct {
				StopReason string `json:"stop_reason"`
			} `json:"delta"`
			Usage struct {
				OutputTokens int64 `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal([]byte(event.Data), &delta); err != nil {
			return nil, uir.SchemaMismatch("anthropic", err)
		}
		if delta.Delta.StopReason == "" {
			return s.Next()
		}
		inputTotal := s.inputTokens + s.cacheReadTokens + s.cacheWriteTokens
		usage := &uir.Usage{
			InputTokens:  inputTotal,
			OutputTokens: delta.Usage.OutputTokens,
			TotalTokens:  inputTotal + delta.Usage.OutputTokens,
			CachedTokens: s.cacheReadTokens,
		}
		return &uir.Chunk{Type: uir.ChunkUsage, StopReason: mapStopReason(delta.Delta.StopReason), Usage: usage}, nil

	case "message_stop":
		s.err = io.EOF
		return &uir.Chunk{Type: uir.ChunkDone}, nil

	case "error":
		return &uir.Chunk{Type: uir.ChunkError, Error: event.Data}, nil
	}

	return s.Next()
}

// StreamEncoder translates UIR chunks into an Anthropic Messages SSE body,
// maintaining the content_block_start -> input_json_delta(s) ->
// content_block_stop sequencing spec §4.1.3 requires for tool calls.
type StreamEncoder struct {
	enc           *sse.Encoder
	openBlocks    map[int]uir.PartType
	startedStream bool
}

// NewStreamEncoder wraps w for UIR-to-Anthropic-SSE translation.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	return &StreamEncoder{enc: sse.NewEncoder(w), openBlocks: make(map[int]uir.PartType)}
}

func (e *StreamEncoder) ensureMessageStart() error {
	if e.startedStream {
		return nil
	}
	e.startedStream = true
	data, _ := json.Marshal(map[string]interface{}{
		"type": "message_start",
		"message": map[string]interface{}{
			"id": "", "type": "message", "role": "assistant", "content": []interface{}{},
		},
	})
	return e.enc.WriteNamedEvent("message_start", string(data))
}

// Write emits the Anthropic SSE event(s) corresponding to chunk.
func (e *StreamEncoder) Write(chunk *uir.Chunk) error {
	if err := e.ensureMessageStart(); err != nil {
		return err
	}

	switch chunk.Type {
	case uir.ChunkContent:
		if chunk.Delta == nil {
			return e.writeBlockStart(chunk)
		}
		if _, open := e.openBlocks[blockIndex(chunk)]; !open {
			if err := e.writeBlockStart(chunk); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]interface{}{
			"type":  "content_block_delta",
			"index": blockIndex(chunk),
			"delta": map[string]interface{}{"type": "text_delta", "text": chunk.Delta.Text},
		})
		return e.enc.WriteNamedEvent("content_block_delta", string(data))

	case uir.ChunkToolCall:
		idx := blockIndex(chunk)
		if _, open := e.openBlocks[idx]; !open {
			if err := e.writeToolBlockStart(idx, chunk); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]interface{}{
			"type":  "content_block_delta",
			"index": idx,
			"delta": map[string]interface{}{"type": "input_json_delta", "partial_json": partialJSON(chunk)},
		})
		return e.enc.WriteNamedEvent("content_block_delta", string(data))

	case uir.ChunkThinking:
		if _, open := e.openBlocks[blockIndex(chunk)]; !open {
			if err := e.writeBlockStart(chunk); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]interface{}{
			"type":  "content_block_delta",
			"index": blockIndex(chunk),
			"delta": map[string]interface{}{"type": "thinking_delta", "thinking": deltaText(chunk)},
		})
		return e.enc.WriteNamedEvent("content_block_delta", string(data))

	case uir.ChunkBlockStop:
		idx := blockIndex(chunk)
		delete(e.openBlocks, idx)
		data, _ := json.Marshal(map[string]interface{}{"type": "content_block_stop", "index": idx})
		return e.enc.WriteNamedEvent("content_block_stop", string(data))

	case uir.ChunkUsage:
		if err := e.closeAnyOpenBlock(); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]interface{}{
			"type":  "message_delta",
			"delta": map[string]interface{}{"stop_reason": unmapStopReason(chunk.StopReason)},
			"usage": map[string]interface{}{"output_tokens": usageOutputTokens(chunk)},
		})
		return e.enc.WriteNamedEvent("message_delta", string(data))

	case uir.ChunkDone:
		return e.enc.WriteNamedEvent("message_stop", `{"type":"message_stop"}`)

	case uir.ChunkError:
		data, _ := json.Marshal(map[string]interface{}{"type": "error", "error": map[string]string{"message": chunk.Error}})
		return e.enc.WriteNamedEvent("error", string(data))
	}
	return nil
}

// closeAnyOpenBlock emits a trailing content_block_stop for the last open
// block before message_delta/message_stop, per spec §4.1.3.
func (e *StreamEncoder) closeAnyOpenBlock() error {
	for idx := range e.openBlocks {
		delete(e.openBlocks, idx)
		data, _ := json.Marshal(map[string]interface{}{"type": "content_block_stop", "index": idx})
		if err := e.enc.WriteNamedEvent("content_block_stop", string(data)); err != nil {
			return err
		}
	}
	return nil
}

func (e *StreamEncoder) writeBlockStart(chunk *uir.Chunk) error {
	idx := blockIndex(chunk)
	blockType := "text"
	if chunk.BlockType == uir.PartThinking {
		blockType = "thinking"
	}
	e.openBlocks[idx] = chunk.BlockType
	data, _ := json.Marshal(map[string]interface{}{
		"type": "content_block_start", "index": idx,
		"content_block": map[string]interface{}{"type": blockType},
	})
	return e.enc.WriteNamedEvent("content_block_start", string(data))
}

func (e *StreamEncoder) writeToolBlockStart(idx int, chunk *uir.Chunk) error {
	e.openBlocks[idx] = uir.PartToolCall
	toolID, toolName := "", ""
	if chunk.Delta != nil {
		toolID, toolName = chunk.Delta.ToolCallID, chunk.Delta.ToolName
	}
	data, _ := json.Marshal(map[string]interface{}{
		"type": "content_block_start", "index": idx,
		"content_block": map[string]interface{}{"type": "tool_use", "id": toolID, "name": toolName, "input": map[string]interface{}{}},
	})
	return e.enc.WriteNamedEvent("content_block_start", string(data))
}

// Close writes nothing extra: message_stop is driven by a ChunkDone Write.
func (e *StreamEncoder) Close() error { return nil }

func blockIndex(chunk *uir.Chunk) int {
	if chunk.BlockIndex != nil {
		return *chunk.BlockIndex
	}
	return 0
}

func partialJSON(chunk *uir.Chunk) string {
	if chunk.Delta != nil {
		return chunk.Delta.PartialJSON
	}
	return ""
}

func deltaText(chunk *uir.Chunk) string {
	if chunk.Delta != nil {
		return chunk.Delta.Text
	}
	return ""
}

func usageOutputTokens(chunk *uir.Chunk) int64 {
	if chunk.Usage != nil {
		return chunk.Usage.OutputTokens
	}
	return 0
}
