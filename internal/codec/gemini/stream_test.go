package gemini

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

func TestStreamDecoder_FunctionCallForcesToolUse(t *testing.T) {
	body := "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"functionCall\":{\"name\":\"get_weather\",\"args\":{\"city\":\"nyc\"}}}]},\"finishReason\":\"STOP\"}]}\n\n"

	dec := NewStreamDecoder(strings.NewReader(body))

	toolChunk, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toolChunk.Type != uir.ChunkToolCall {
		t.Fatalf("expected tool_call chunk, got %+v", toolChunk)
	}

	usageChunk, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usageChunk.StopReason != uir.StopToolUse {
		t.Errorf("expected tool_use stop reason despite STOP finishReason, got %v", usageChunk.StopReason)
	}
}

func TestStreamEncoder_WritesTextPart(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)

	idx := 0
	err := enc.Write(&uir.Chunk{
		Type: uir.ChunkContent, BlockIndex: &idx,
		Delta: &uir.Delta{ContentPart: uir.Text("hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"text":"hi"`) {
		t.Errorf("got %q", buf.String())
	}
}

func TestStreamDecoder_EOF(t *testing.T) {
	dec := NewStreamDecoder(strings.NewReader(""))
	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
