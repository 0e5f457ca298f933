package gemini

import (
	"encoding/json"
	"io"

	"github.com/digitallysavvy/go-ai/internal/sse"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// StreamDecoder translates a Gemini streamGenerateContent SSE body (each
// frame a whole wireResponse envelope, spec §4.1.4) into UIR chunks. A
// frame's candidate may carry more than one part; those are queued and
// drained one UIR chunk at a time so Next's contract (one chunk per call)
// holds.
type StreamDecoder struct {
	dec     *sse.Decoder
	pending []*uir.Chunk
	index   int
	done    bool
}

// NewStreamDecoder wraps r for Gemini SSE-to-UIR translation.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: sse.NewDecoder(r)}
}

// Next returns the next UIR chunk, or io.EOF once the stream ends.
func (s *StreamDecoder) Next() (*uir.Chunk, error) {
	if len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		return c, nil
	}
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

	var wire wireResponse
	if err := json.Unmarshal([]byte(event.Data), &wire); err != nil {
		return nil, uir.SchemaMismatch("gemini", err)
	}

	if len(wire.Candidates) > 0 {
		cand := wire.Candidates[0]
		hasFunctionCall := false
		for _, p := range cand.Content.Parts {
			idx := s.index
			s.index++
			switch {
			case p.FunctionCall != nil:
				hasFunctionCall = true
				argsJSON, _ := json.Marshal(p.FunctionCall.Args)
				s.pending = append(s.pending, &uir.Chunk{
					Type: uir.ChunkToolCall, BlockIndex: &idx, BlockType: uir.PartToolCall,
					Delta: &uir.Delta{
						ContentPart: uir.ContentPart{Type: uir.PartToolCall, ToolCallID: functionCallID(p.FunctionCall), ToolName: p.FunctionCall.Name},
						PartialJSON: string(argsJSON),
					},
				})
			case p.Thought:
				s.pending = append(s.pending, &uir.Chunk{
					Type: uir.ChunkThinking, BlockIndex: &idx, BlockType: uir.PartThinking,
					Delta: &uir.Delta{ContentPart: uir.ContentPart{Type: uir.PartThinking, Text: p.Text, Signature: p.ThoughtSignature}},
				})
			default:
				if p.Text != "" {
					s.pending = append(s.pending, &uir.Chunk{
						Type: uir.ChunkContent, BlockIndex: &idx, BlockType: uir.PartText,
						Delta: &uir.Delta{ContentPart: uir.Text(p.Text)},
					})
				}
			}
		}

		if cand.FinishReason != "" || wire.UsageMetadata != nil {
			stopReason := mapFinishReason(cand.FinishReason)
			if hasFunctionCall {
				stopReason = uir.StopToolUse
			}
			s.pending = append(s.pending, &uir.Chunk{
				Type: uir.ChunkUsage, StopReason: stopReason, Usage: mapUsage(wire.UsageMetadata),
			})
		}
	}

	if len(s.pending) == 0 {
		return s.Next()
	}
	c := s.pending[0]
	s.pending = s.pending[1:]
	return c, nil
}

// StreamEncoder translates UIR chunks into a Gemini streamGenerateContent
// SSE body.
type StreamEncoder struct {
	enc *sse.Encoder
}

// NewStreamEncoder wraps w for UIR-to-Gemini-SSE translation.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	return &StreamEncoder{enc: sse.NewEncoder(w)}
}

// Write emits the Gemini SSE data frame corresponding to chunk.
func (e *StreamEncoder) Write(chunk *uir.Chunk) error {
	switch chunk.Type {
	case uir.ChunkContent:
		if chunk.Delta == nil {
			return nil
		}
		return e.writePart(wirePart{Text: chunk.Delta.Text})

	case uir.ChunkThinking:
		if chunk.Delta == nil {
			return nil
		}
		return e.writePart(wirePart{Text: chunk.Delta.Text, Thought: true, ThoughtSignature: chunk.Delta.Signature})

	case uir.ChunkToolCall:
		if chunk.Delta == nil {
			return nil
		}
		var args map[string]interface{}
		json.Unmarshal([]byte(chunk.Delta.PartialJSON), &args)
		return e.writePart(wirePart{
			FunctionCall: &wireFunctionCall{ID: chunk.Delta.ToolCallID, Name: chunk.Delta.ToolName, Args: args},
		})

	case uir.ChunkUsage:
		data, _ := json.Marshal(wireResponse{
			Candidates:    []wireCandidate{{FinishReason: unmapFinishReason(chunk.StopReason)}},
			UsageMetadata: transformUsage(chunk.Usage),
		})
		return e.enc.WriteData(string(data))

	case uir.ChunkDone:
		return nil
	}
	return nil
}

func (e *StreamEncoder) writePart(p wirePart) error {
	data, err := json.Marshal(wireResponse{
		Candidates: []wireCandidate{{Content: wireContent{Role: "model", Parts: []wirePart{p}}}},
	})
	if err != nil {
		return err
	}
	return e.enc.WriteData(string(data))
}

func transformUsage(u *uir.Usage) *wireUsage {
	if u == nil {
		return nil
	}
	return &wireUsage{
		PromptTokenCount:        u.InputTokens,
		CandidatesTokenCount:    u.OutputTokens,
		TotalTokenCount:         u.TotalTokens,
		ThoughtsTokenCount:      u.ThinkingTokens,
		CachedContentTokenCount: u.CachedTokens,
	}
}

// Close is a no-op: Gemini streams carry no terminal sentinel frame beyond
// the last candidate envelope (spec §4.1.4 — "Gemini streams omit event:").
func (e *StreamEncoder) Close() error { return nil }
