// Package codec defines the vendor translation contract (spec §4.1, C2)
// and a registry over the four concrete implementations. Each vendor
// package (openaichat, openairesp, anthropic, gemini) implements Vendor.
package codec

import (
	"io"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// Vendor translates between one client/upstream wire format and the UIR in
// both directions, for both whole-body and streamed exchanges.
type Vendor interface {
	// Name identifies this vendor's wire format, matching a detector.Format
	// value.
	Name() string

	// ParseRequest decodes a client request body in this vendor's format
	// into the UIR.
	ParseRequest(body []byte) (*uir.Request, error)

	// TransformRequest encodes a UIR request into this vendor's upstream
	// request body, ready to attach to an HTTP POST.
	TransformRequest(req *uir.Request) ([]byte, error)

	// ParseResponse decodes a whole (non-streamed) upstream response body
	// in this vendor's format into the UIR.
	ParseResponse(body []byte) (*uir.Response, error)

	// TransformResponse encodes a UIR response into this vendor's
	// client-facing response body.
	TransformResponse(resp *uir.Response) ([]byte, error)

	// StreamDecoder wraps r, translating this vendor's upstream SSE body
	// into a sequence of UIR chunks.
	StreamDecoder(r io.Reader) ChunkDecoder

	// StreamEncoder wraps w, translating UIR chunks into this vendor's
	// client-facing SSE body.
	StreamEncoder(w io.Writer) ChunkEncoder
}

// ChunkDecoder yields successive UIR chunks translated from an upstream
// stream. Next returns io.EOF once the stream is exhausted.
type ChunkDecoder interface {
	Next() (*uir.Chunk, error)
}

// ChunkEncoder writes successive UIR chunks out in the vendor's
// client-facing wire format. Close flushes any trailing framing the
// encoder still owes (e.g. the OpenAI Chat "[DONE]" frame when no
// ChunkDone was written); encoders with none return nil.
type ChunkEncoder interface {
	Write(chunk *uir.Chunk) error
	Close() error
}

// Registry looks vendors up by name.
type Registry struct {
	vendors map[string]Vendor
}

// NewRegistry builds a Registry from the given vendors.
func NewRegistry(vendors ...Vendor) *Registry {
	r := &Registry{vendors: make(map[string]Vendor, len(vendors))}
	for _, v := range vendors {
		r.vendors[v.Name()] = v
	}
	return r
}

// Get returns the vendor registered under name, or false if none is.
func (r *Registry) Get(name string) (Vendor, bool) {
	v, ok := r.vendors[name]
	return v, ok
}
