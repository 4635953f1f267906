//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

package tutor

import "context"

// Provider is the boundary to the generative-language service. The Gemini
// implementation lives in internal/gemini; tests use the gomock mocks.
type Provider interface {
	// Generate returns the text completion for a single prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Synthesize returns raw little-endian PCM16 mono audio at 24 kHz.
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// NewChat opens a conversation primed with a system instruction.
	NewChat(ctx context.Context, systemInstruction string) (ChatSession, error)
}

// ChatSession is one conversation with the service. It keeps the history of
// previous turns so each Send sees the earlier exchanges.
type ChatSession interface {
	Send(ctx context.Context, message string) (string, error)
}
