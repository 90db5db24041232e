package object

import (
	stdbinary "encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/message"
)

// MinGroupChunkSize is the smallest message area given to group headers,
// the same reserve the reference library leaves for new links.
const MinGroupChunkSize = 120

// Encode returns a version 2 object header holding messages, with the
// address widths of w. A message area smaller than minChunk is padded with
// a NIL message.
func Encode(w *binary.Writer, messages []message.Message, minChunk int) ([]byte, error) {
	order := w.ByteOrder()
	cfg := binary.Config{ByteOrder: order, OffsetSize: w.OffsetSize(), LengthSize: w.LengthSize()}

	var body []byte
	for _, m := range messages {
		s, ok := m.(message.Serializable)
		if !ok {
			return nil, fmt.Errorf("message type %#x cannot be written", m.Type())
		}
		out := &sink{}
		if err := s.Serialize(binary.NewWriter(out, cfg)); err != nil {
			return nil, fmt.Errorf("message type %#x: %w", m.Type(), err)
		}
		if len(out.b) > math.MaxUint16 {
			return nil, fmt.Errorf("message type %#x is %d bytes, the limit is %d", m.Type(), len(out.b), math.MaxUint16)
		}
		body = appendMessage(order, body, m.Type(), out.b)
	}
	if pad := minChunk - len(body); pad > 0 {
		body = appendMessage(order, body, message.TypeNIL, make([]byte, max(pad-4, 0)))
	}

	width := 8
	switch n := uint64(len(body)); {
	case n <= math.MaxUint8:
		width = 1
	case n <= math.MaxUint16:
		width = 2
	case n <= math.MaxUint32:
		width = 4
	}

	hdr := append([]byte("OHDR"), 2, uint8(bits.TrailingZeros(uint(width))))
	hdr = appendUint(order, hdr, uint64(len(body)), width)
	hdr = append(hdr, body...)
	return appendUint(order, hdr, uint64(binary.Lookup3Checksum(hdr)), 4), nil
}

// Write encodes messages at the position of w and returns the bytes
// written.
func Write(w *binary.Writer, messages []message.Message, minChunk int) (int64, error) {
	b, err := Encode(w, messages, minChunk)
	if err != nil {
		return 0, err
	}
	if err := w.WriteBytes(b); err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

func appendMessage(order stdbinary.ByteOrder, b []byte, typ message.Type, data []byte) []byte {
	b = append(b, uint8(typ))
	b = appendUint(order, b, uint64(len(data)), 2)
	b = append(b, 0)
	return append(b, data...)
}

func appendUint(order stdbinary.ByteOrder, b []byte, v uint64, n int) []byte {
	buf := make([]byte, n)
	binary.EncodeUint(order, buf, v)
	return append(b, buf...)
}

// sink collects the bytes of one serialized message.
type sink struct{ b []byte }

func (s *sink) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(s.b) {
		s.b = append(s.b, make([]byte, end-len(s.b))...)
	}
	return copy(s.b[off:], p), nil
}

// GroupMessages lists the messages of a compact new-style group: link
// info, group info, then the links and attributes in order.
func GroupMessages(links []*message.Link, attrs []*message.Attribute) []message.Message {
	msgs := make([]message.Message, 0, 2+len(links)+len(attrs))
	msgs = append(msgs, message.NewLinkInfo(), message.NewGroupInfo())
	for _, l := range links {
		msgs = append(msgs, l)
	}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}

// DatasetMessages lists the messages of a dataset header. A nil pipeline
// leaves the data unfiltered.
func DatasetMessages(space *message.Dataspace, dt *message.Datatype, layout *message.DataLayout, pipeline *message.FilterPipeline, attrs []*message.Attribute) []message.Message {
	msgs := []message.Message{space, dt}
	if pipeline != nil {
		msgs = append(msgs, pipeline)
	}
	msgs = append(msgs, layout)
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}
