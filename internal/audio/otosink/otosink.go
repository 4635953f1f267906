//go:build cgo

package otosink

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/agbru/gcdtutor/internal/audio"
)

const pollInterval = 20 * time.Millisecond

// oto allows a single context per process.
var (
	contextOnce sync.Once
	otoContext  *oto.Context
	contextErr  error
)

func sharedContext() (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audio.SampleRate,
			ChannelCount: audio.Channels,
			Format:       oto.FormatFloat32LE,
		}
		c, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		otoContext = c
	})
	return otoContext, contextErr
}

// Sink plays samples on the default output device.
type Sink struct{}

// New returns a Sink. The device is opened on first use.
func New() *Sink { return &Sink{} }

// Play blocks until the clip has been played or ctx is canceled.
func (s *Sink) Play(ctx context.Context, samples []float32) error {
	c, err := sharedContext()
	if err != nil {
		return err
	}
	player := c.NewPlayer(bytes.NewReader(audio.EncodeFloat32LE(samples)))
	defer player.Close()

	player.Play()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
