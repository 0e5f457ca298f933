package openairesp

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

func TestStreamDecoder_FunctionCallArgumentsAccumulate(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"response.output_item.added","output_index":0,"item":{"type":"function_call","call_id":"call_1","name":"get_weather"}}`,
		"",
		`data: {"type":"response.function_call_arguments.delta","output_index":0,"delta":"{\"city\":"}`,
		"",
		`data: {"type":"response.function_call_arguments.delta","output_index":0,"delta":"\"nyc\"}"}`,
		"",
		"",
	}, "\n")

	dec := NewStreamDecoder(strings.NewReader(body))

	c1, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c1.Delta.ToolCallID != "call_1" || c1.Delta.ToolName != "get_weather" {
		t.Errorf("first delta missing id/name: %+v", c1.Delta)
	}

	c2, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c1.Delta.PartialJSON+c2.Delta.PartialJSON != `{"city":"nyc"}` {
		t.Errorf("concatenated partial json mismatch: %q", c1.Delta.PartialJSON+c2.Delta.PartialJSON)
	}
}

func TestStreamEncoder_ToolCallOpensItemOnce(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)

	idx := 0
	for i := 0; i < 2; i++ {
		err := enc.Write(&uir.Chunk{
			Type: uir.ChunkToolCall, BlockIndex: &idx,
			Delta: &uir.Delta{ContentPart: uir.ContentPart{ToolCallID: "call_1", ToolName: "f"}, PartialJSON: "{}"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if strings.Count(buf.String(), "response.output_item.added") != 1 {
		t.Errorf("expected exactly one output_item.added event, got body %q", buf.String())
	}
}

func TestStreamDecoder_EOF(t *testing.T) {
	dec := NewStreamDecoder(strings.NewReader(""))
	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
