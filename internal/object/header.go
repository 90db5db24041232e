package object

import (
	stdbinary "encoding/binary"
	"errors"
	"fmt"

	"github.com/baltrad/vpconvert/internal/binary"
	"github.com/baltrad/vpconvert/internal/message"
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// Version 2 header flags.
const (
	flagSizeWidth  = 0x03
	flagTrackOrder = 0x04
	flagPhase      = 0x10
	flagTimes      = 0x20
)

// Header is a decoded object header. Messages keeps the order in which
// they appear, continuation blocks included; messages that fail to decode
// are left out.
type Header struct {
	Version  uint8
	Address  uint64
	Flags    uint8
	ModTime  uint32
	Messages []message.Message

	order stdbinary.ByteOrder
}

// span is a continuation block still to be read.
type span struct{ addr, length uint64 }

// Read decodes the object header at address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	sig, err := r.At(int64(address)).Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}

	h := &Header{Address: address, order: r.ByteOrder()}
	var pending []span
	switch {
	case string(sig) == "OHDR":
		pending, err = h.readV2(r)
	case sig[0] == 1:
		pending, err = h.readV1(r)
	default:
		return nil, fmt.Errorf("%w: no header at %d", ErrInvalidHeader, address)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]bool)
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if seen[c.addr] {
			return nil, fmt.Errorf("%w: continuation loop at %d", ErrInvalidHeader, c.addr)
		}
		seen[c.addr] = true

		block, err := r.At(int64(c.addr)).ReadBytes(int(c.length))
		if err != nil {
			return nil, fmt.Errorf("reading continuation block at %d: %w", c.addr, err)
		}
		var more []span
		if h.Version == 1 {
			more, err = h.decodeV1(r, block)
		} else {
			more, err = h.decodeContinuationV2(r, block)
		}
		if err != nil {
			return nil, fmt.Errorf("continuation block at %d: %w", c.addr, err)
		}
		pending = append(pending, more...)
	}
	return h, nil
}

// readV1 decodes the 16 byte prefix and the first message block.
func (h *Header) readV1(r *binary.Reader) ([]span, error) {
	prefix, err := r.At(int64(h.Address)).ReadBytes(16)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	h.Version = 1
	size := h.order.Uint32(prefix[8:12])
	block, err := r.At(int64(h.Address) + 16).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("reading object header messages: %w", err)
	}
	return h.decodeV1(r, block)
}

// decodeV1 walks 8-byte aligned messages with an 8 byte message header.
func (h *Header) decodeV1(r *binary.Reader, block []byte) ([]span, error) {
	var conts []span
	for pos := 0; pos+8 <= len(block); {
		typ := message.Type(h.order.Uint16(block[pos:]))
		size := int(h.order.Uint16(block[pos+2:]))
		pos += 8
		if pos+size > len(block) {
			return nil, fmt.Errorf("%w: message of %d bytes overruns its block", ErrInvalidHeader, size)
		}
		conts = h.add(r, typ, block[pos:pos+size], conts)
		pos += (size + 7) &^ 7
	}
	return conts, nil
}

func (h *Header) readV2(r *binary.Reader) ([]span, error) {
	hr := r.At(int64(h.Address))
	fixed, err := hr.ReadBytes(6)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	if fixed[4] != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, fixed[4])
	}
	h.Version, h.Flags = 2, fixed[5]

	var optional int
	if h.Flags&flagTimes != 0 {
		optional += 16
	}
	if h.Flags&flagPhase != 0 {
		optional += 4
	}
	hr.Skip(int64(optional))
	chunkSize, err := hr.ReadUintN(1 << (h.Flags & flagSizeWidth))
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}

	prefixLen := int(hr.Pos() - int64(h.Address))
	all, err := r.At(int64(h.Address)).ReadBytes(prefixLen + int(chunkSize) + 4)
	if err != nil {
		return nil, fmt.Errorf("reading object header messages: %w", err)
	}
	body, err := verify(h.order, all)
	if err != nil {
		return nil, err
	}
	if h.Flags&flagTimes != 0 {
		h.ModTime = h.order.Uint32(all[10:14])
	}
	return h.decodeV2(r, body[prefixLen:])
}

func (h *Header) decodeContinuationV2(r *binary.Reader, block []byte) ([]span, error) {
	if len(block) < 8 || string(block[:4]) != "OCHK" {
		return nil, fmt.Errorf("%w: missing OCHK signature", ErrInvalidHeader)
	}
	body, err := verify(h.order, block)
	if err != nil {
		return nil, err
	}
	return h.decodeV2(r, body[4:])
}

// decodeV2 walks packed messages with a 4 byte message header, or 6 when
// creation order is tracked. A tail shorter than a message header is a gap.
func (h *Header) decodeV2(r *binary.Reader, block []byte) ([]span, error) {
	headerLen := 4
	if h.Flags&flagTrackOrder != 0 {
		headerLen = 6
	}
	var conts []span
	for pos := 0; pos+headerLen <= len(block); {
		typ := message.Type(block[pos])
		size := int(h.order.Uint16(block[pos+1:]))
		pos += headerLen
		if pos+size > len(block) {
			return nil, fmt.Errorf("%w: message of %d bytes overruns its block", ErrInvalidHeader, size)
		}
		conts = h.add(r, typ, block[pos:pos+size], conts)
		pos += size
	}
	return conts, nil
}

// add decodes one message, queueing continuations instead of storing them.
func (h *Header) add(r *binary.Reader, typ message.Type, data []byte, conts []span) []span {
	switch typ {
	case message.TypeNIL:
		return conts
	case message.TypeObjectHeaderContinuation:
		if c, err := message.ParseContinuation(data, r); err == nil {
			conts = append(conts, span{c.Offset, c.Length})
		}
		return conts
	}
	if m, err := message.Parse(typ, data, r); err == nil {
		h.Messages = append(h.Messages, m)
	}
	return conts
}

// verify checks the trailing lookup3 checksum of b and returns b without it.
func verify(order stdbinary.ByteOrder, b []byte) ([]byte, error) {
	n := len(b) - 4
	if stored, sum := order.Uint32(b[n:]), binary.Lookup3Checksum(b[:n]); stored != sum {
		return nil, fmt.Errorf("%w: stored %#x, computed %#x", ErrChecksumMismatch, stored, sum)
	}
	return b[:n], nil
}

// First returns the first message of type typ, or nil.
func (h *Header) First(typ message.Type) message.Message {
	for _, m := range h.Messages {
		if m.Type() == typ {
			return m
		}
	}
	return nil
}

func first[T message.Message](h *Header, typ message.Type) T {
	m, _ := h.First(typ).(T)
	return m
}

func every[T message.Message](h *Header) []T {
	var out []T
	for _, m := range h.Messages {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (h *Header) Dataspace() *message.Dataspace {
	return first[*message.Dataspace](h, message.TypeDataspace)
}

func (h *Header) Datatype() *message.Datatype {
	return first[*message.Datatype](h, message.TypeDatatype)
}

func (h *Header) DataLayout() *message.DataLayout {
	return first[*message.DataLayout](h, message.TypeDataLayout)
}

func (h *Header) FilterPipeline() *message.FilterPipeline {
	return first[*message.FilterPipeline](h, message.TypeFilterPipeline)
}

func (h *Header) SymbolTable() *message.SymbolTable {
	return first[*message.SymbolTable](h, message.TypeSymbolTable)
}

// Links returns the link messages in header order.
func (h *Header) Links() []*message.Link { return every[*message.Link](h) }

// Attributes returns the attribute messages in header order.
func (h *Header) Attributes() []*message.Attribute { return every[*message.Attribute](h) }
