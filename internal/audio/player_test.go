package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

type blockingSink struct {
	started chan struct{}
	release chan struct{}
	got     []float32
}

func (s *blockingSink) Play(ctx context.Context, samples []float32) error {
	s.got = samples
	close(s.started)
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPlayer_RejectsConcurrentPlayback(t *testing.T) {
	t.Parallel()
	sink := &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
	p := NewPlayer(sink)

	done := make(chan error, 1)
	go func() { done <- p.Play(context.Background(), []byte{0x00, 0x40}) }()
	<-sink.started

	if !p.Active() {
		t.Error("Active() = false during playback")
	}
	if err := p.Play(context.Background(), []byte{0, 0}); !errors.Is(err, ErrPlaybackActive) {
		t.Errorf("second Play() error = %v, want ErrPlaybackActive", err)
	}

	close(sink.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play() did not return")
	}
	if p.Active() {
		t.Error("Active() = true after playback")
	}
	if len(sink.got) != 1 || sink.got[0] != 0.5 {
		t.Errorf("sink received %v, want [0.5]", sink.got)
	}
}

type failingSink struct{ calls int }

func (s *failingSink) Play(context.Context, []float32) error {
	s.calls++
	return errors.New("device busy")
}

func TestPlayer_ReleasesAfterFailure(t *testing.T) {
	t.Parallel()
	sink := &failingSink{}
	p := NewPlayer(sink)
	for i := 0; i < 2; i++ {
		if err := p.Play(context.Background(), []byte{0, 0}); err == nil || errors.Is(err, ErrPlaybackActive) {
			t.Fatalf("Play() #%d error = %v, want sink error", i+1, err)
		}
	}
	if sink.calls != 2 {
		t.Errorf("sink calls = %d, want 2", sink.calls)
	}
}

func TestDiscardSink(t *testing.T) {
	t.Parallel()
	if err := (DiscardSink{}).Play(context.Background(), nil); err != nil {
		t.Errorf("Play() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (DiscardSink{}).Play(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Play() error = %v, want context.Canceled", err)
	}
}
