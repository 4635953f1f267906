//go:build !cgo

package otosink

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the binary was built without cgo.
var ErrUnavailable = errors.New("audio output requires a cgo build")

// Sink is a stand-in that reports ErrUnavailable.
type Sink struct{}

// New returns a Sink.
func New() *Sink { return &Sink{} }

// Play always fails.
func (s *Sink) Play(context.Context, []float32) error { return ErrUnavailable }
