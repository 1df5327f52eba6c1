package protocol

import (
	"encoding/json"
	"io"
)

// readChunkSize is the receive granularity. Any value works; framing
// does not depend on it.
const readChunkSize = 8192

// Decoder turns a byte stream into a sequence of JSON values using
// parse-attempt framing: after every chunk read, the accumulated buffer
// is tried as one complete JSON value. A failed parse means "more data
// needed", never an error, so a value split at arbitrary byte boundaries
// (including inside a multi-byte UTF-8 sequence) decodes exactly once,
// when the final byte arrives.
//
// The framing is strictly one message per read cycle: trailing bytes
// from a pipelined next message would make the parse fail until that
// message is also complete, so peers must not pipeline.
type Decoder struct {
	r     io.Reader
	buf   []byte
	chunk []byte
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:     r,
		chunk: make([]byte, readChunkSize),
	}
}

// Decode reads until the buffer parses as one JSON value, then
// unmarshals it into v and clears the buffer. Read errors (including
// io.EOF on peer close and deadline timeouts) are returned as-is;
// partially accumulated bytes stay visible through Buffered.
func (d *Decoder) Decode(v any) error {
	for {
		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
			if json.Valid(d.buf) {
				uerr := json.Unmarshal(d.buf, v)
				d.buf = d.buf[:0]
				return uerr
			}
		}
		if err != nil {
			return err
		}
	}
}

// Buffered reports how many bytes of an incomplete value have
// accumulated. Nonzero after a read error means the peer went away
// mid-message.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Writer marshals envelopes onto a stream.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteCommand sends a command envelope.
func (w *Writer) WriteCommand(cmd Command) error {
	return w.writeJSON(cmd)
}

// WriteResponse sends a response envelope.
func (w *Writer) WriteResponse(resp Response) error {
	return w.writeJSON(resp)
}

func (w *Writer) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.w.Write(data)
	return err
}
