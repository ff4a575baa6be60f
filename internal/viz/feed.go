package viz

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/logging"
)

// Frame is one pushed step.
type Frame struct {
	State   dynamo.State
	Control dynamo.Control
	Time    float64
}

// Feed is a dynamo.Observer that buffers frames for a renderer. When the
// buffer is full new frames are dropped so the stepping side never blocks.
type Feed struct {
	ch      chan Frame
	dropped atomic.Uint64
	log     zerolog.Logger
}

func NewFeed(capacity int, log zerolog.Logger) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{
		ch:  make(chan Frame, capacity),
		log: logging.Sampled(log),
	}
}

func (f *Feed) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	select {
	case f.ch <- Frame{State: x, Control: u.Clone(), Time: t}:
	default:
		n := f.dropped.Add(1)
		f.log.Debug().Uint64("dropped", n).Float64("t", t).Msg("feed full, frame dropped")
	}
}

// Frames is the receive side.
func (f *Feed) Frames() <-chan Frame { return f.ch }

// Drain returns every buffered frame without blocking.
func (f *Feed) Drain() []Frame {
	var out []Frame
	for {
		select {
		case fr := <-f.ch:
			out = append(out, fr)
		default:
			return out
		}
	}
}

func (f *Feed) Dropped() uint64 { return f.dropped.Load() }
