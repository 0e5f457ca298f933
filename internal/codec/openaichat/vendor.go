package openaichat

import (
	"io"

	"github.com/digitallysavvy/go-ai/internal/codec"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// Codec implements codec.Vendor for the OpenAI Chat Completions wire format.
type Codec struct{}

// New returns a Codec ready to register into a codec.Registry.
func New() *Codec { return &Codec{} }

func (*Codec) Name() string { return "openai_chat" }

func (*Codec) ParseRequest(body []byte) (*uir.Request, error) { return ParseRequest(body) }

func (*Codec) TransformRequest(req *uir.Request) ([]byte, error) { return TransformRequest(req) }

func (*Codec) ParseResponse(body []byte) (*uir.Response, error) { return ParseResponse(body) }

func (*Codec) TransformResponse(resp *uir.Response) ([]byte, error) { return TransformResponse(resp) }

func (*Codec) StreamDecoder(r io.Reader) codec.ChunkDecoder { return NewStreamDecoder(r) }

func (*Codec) StreamEncoder(w io.Writer) codec.ChunkEncoder { return NewStreamEncoder(w) }

var _ codec.Vendor = (*Codec)(nil)
