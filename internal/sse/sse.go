// Package sse provides the Server-Sent Events framing shared by all four
// codec packages: a streaming decoder for reading vendor SSE bodies and an
// encoder for writing translated events back to the caller.
package sse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Event is one parsed (or to-be-written) SSE frame.
type Event struct {
	Event string
	Data  string
	ID    string
	Retry int
}

// Decoder reads successive Events from an SSE byte stream.
type Decoder struct {
	scanner *bufio.Scanner
	err     error
}

// NewDecoder wraps r for incremental SSE event reading. The buffer size is
// raised above bufio.Scanner's default since tool-call argument deltas
// regularly arrive as long single lines.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (*Event, error) {
	if d.err != nil {
		return nil, d.err
	}

	event := &Event{}
	var dataLines []string

	for d.scanner.Scan() {
		line := d.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 || event.Event != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := line[colonIdx+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		switch field {
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			event.ID = value
		case "retry":
			if n, err := strconv.Atoi(value); err == nil {
				event.Retry = n
			}
		}
	}

	if err := d.scanner.Err(); err != nil {
		d.err = err
		return nil, err
	}

	if len(dataLines) > 0 || event.Event != "" {
		event.Data = strings.Join(dataLines, "\n")
		d.err = io.EOF
		return event, nil
	}

	d.err = io.EOF
	return nil, io.EOF
}

// IsDone reports whether event is the OpenAI-style terminal "[DONE]" frame.
func IsDone(event *Event) bool {
	return event != nil && (event.Data == "[DONE]" || event.Event == "done")
}

// Encoder writes translated Events to an http.ResponseWriter-like sink.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w for SSE event writing.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteEvent serializes event per the SSE wire format, splitting multi-line
// data across repeated "data:" fields.
func (e *Encoder) WriteEvent(event Event) error {
	var buf bytes.Buffer

	if event.Event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", event.ID)
	}
	if event.Retry > 0 {
		fmt.Fprintf(&buf, "retry: %d\n", event.Retry)
	}
	if event.Data != "" {
		for _, line := range strings.Split(event.Data, "\n") {
			fmt.Fprintf(&buf, "data: %s\n", line)
		}
	}
	buf.WriteString("\n")

	_, err := e.w.Write(buf.Bytes())
	return err
}

// WriteData writes a bare data-only event, the shape OpenAI/Gemini use.
func (e *Encoder) WriteData(data string) error {
	return e.WriteEvent(Event{Data: data})
}

// WriteNamedEvent writes an "event: X" + "data: Y" pair, the shape
// Anthropic's Messages streaming protocol uses for every frame.
func (e *Encoder) WriteNamedEvent(eventType, data string) error {
	return e.WriteEvent(Event{Event: eventType, Data: data})
}

// WriteDone writes the OpenAI-style terminal frame.
func (e *Encoder) WriteDone() error {
	return e.WriteData("[DONE]")
}
