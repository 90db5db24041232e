package filter

import (
	"errors"
	"fmt"

	"github.com/baltrad/vpconvert/internal/message"
)

var ErrUnsupported = errors.New("filter: unsupported")

type transform func([]byte) ([]byte, error)

type stage struct {
	id     uint16
	decode transform
	encode transform
}

// known names filters that are recognised but cannot be applied.
var known = map[uint16]string{
	message.FilterSZIP:        "szip",
	message.FilterNBit:        "n-bit",
	message.FilterScaleOffset: "scale-offset",
}

func newStage(info message.FilterInfo) (stage, error) {
	arg := func(def int) int {
		if len(info.ClientData) > 0 && info.ClientData[0] > 0 {
			return int(info.ClientData[0])
		}
		return def
	}
	switch info.ID {
	case message.FilterDeflate:
		level := arg(defaultLevel)
		return stage{info.ID, inflate, func(b []byte) ([]byte, error) { return deflate(b, level) }}, nil
	case message.FilterShuffle:
		size := arg(1)
		return stage{
			info.ID,
			func(b []byte) ([]byte, error) { return unshuffle(b, size), nil },
			func(b []byte) ([]byte, error) { return shuffle(b, size), nil },
		}, nil
	case message.FilterFletcher32:
		return stage{info.ID, verifyFletcher32, appendFletcher32}, nil
	}
	if name, ok := known[info.ID]; ok {
		return stage{}, fmt.Errorf("%w: %s (id %d)", ErrUnsupported, name, info.ID)
	}
	return stage{}, fmt.Errorf("%w: id %d", ErrUnsupported, info.ID)
}

// Pipeline applies the filters of a chunked dataset.
type Pipeline struct {
	stages []stage
}

// NewPipeline builds the pipeline described by fp, which may be nil.
// Optional filters that are not available are left out.
func NewPipeline(fp *message.FilterPipeline) (*Pipeline, error) {
	p := &Pipeline{}
	if fp == nil {
		return p, nil
	}
	for _, info := range fp.Filters {
		s, err := newStage(info)
		if err != nil {
			if info.IsOptional() {
				continue
			}
			return nil, err
		}
		p.stages = append(p.stages, s)
	}
	return p, nil
}

func (p *Pipeline) Empty() bool { return len(p.stages) == 0 }

func (p *Pipeline) Len() int { return len(p.stages) }

// Decode undoes the filters, last first. Bit i of mask skips filter i.
func (p *Pipeline) Decode(data []byte, mask uint32) ([]byte, error) {
	for i := len(p.stages) - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			continue
		}
		var err error
		if data, err = p.stages[i].decode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", p.stages[i].id, err)
		}
	}
	return data, nil
}

// Encode applies the filters in pipeline order.
func (p *Pipeline) Encode(data []byte) ([]byte, error) {
	for _, s := range p.stages {
		var err error
		if data, err = s.encode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", s.id, err)
		}
	}
	return data, nil
}
