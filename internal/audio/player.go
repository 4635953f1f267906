package audio

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPlaybackActive is returned when Play is called while another clip is
// still playing. Requests are rejected, not queued.
var ErrPlaybackActive = errors.New("audio playback already in progress")

// Sink plays normalized mono samples at SampleRate and blocks until done or
// until ctx is canceled.
type Sink interface {
	Play(ctx context.Context, samples []float32) error
}

// Player allows at most one playback at a time over a Sink.
type Player struct {
	sink   Sink
	sem    *semaphore.Weighted
	active atomic.Bool
}

// NewPlayer wraps sink.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink, sem: semaphore.NewWeighted(1)}
}

// Play decodes pcm and sends it to the sink. It returns ErrPlaybackActive
// immediately if a previous call has not finished.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if !p.sem.TryAcquire(1) {
		return ErrPlaybackActive
	}
	p.active.Store(true)
	defer func() {
		p.active.Store(false)
		p.sem.Release(1)
	}()
	return p.sink.Play(ctx, Decode(pcm))
}

// Active reports whether a playback is running.
func (p *Player) Active() bool {
	return p.active.Load()
}

// DiscardSink drops every clip. It stands in for a device where playback
// must stay silent, such as tests of the speech controls.
type DiscardSink struct{}

// Play returns immediately.
func (DiscardSink) Play(ctx context.Context, _ []float32) error {
	return ctx.Err()
}
