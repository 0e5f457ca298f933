package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/digitallysavvy/go-ai/internal/codec"
)

// translateStream implements the streaming translation pipeline (spec
// §4.7.1): a per-connection state machine that decodes upstream SSE
// frames via upstreamCodec and re-encodes them via sourceCodec, writing
// each translated frame to w as it arrives. Frame boundaries are
// preserved end to end since each codec.ChunkEncoder.Write call emits
// exactly one complete frame (spec §4.7.1: "each call to
// transformStreamChunk produces a complete frame or sequence thereof").
//
// Client disconnect is obeyed by ctx cancellation aborting the in-flight
// upstream read (spec §4.7.2, §5): Next() is called in a loop that
// checks ctx.Err() between iterations, and upstreamBody is always closed
// on return so the in-flight read is released.
func (h *Handler) translateStream(ctx context.Context, w http.ResponseWriter, upstreamCodec, sourceCodec codec.Vendor, upstreamBody io.ReadCloser) {
	defer upstreamBody.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	dec := upstreamCodec.StreamDecoder(upstreamBody)
	enc := sourceCodec.StreamEncoder(w)

	for {
		if ctx.Err() != nil {
			break
		}
		chunk, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if writeErr := enc.Write(chunk); writeErr != nil {
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	enc.Close()
	if flusher != nil {
		flusher.Flush()
	}
}
