package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/tutor"
)

// Default model and voice names.
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"
)

// Config holds the connection settings for the Gemini API.
type Config struct {
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string
	// BaseURL overrides the API endpoint (tests and proxies).
	BaseURL string
	// HTTPClient overrides the transport used by the SDK.
	HTTPClient *http.Client
}

// Client implements tutor.Provider on top of the Gemini SDK.
type Client struct {
	genai *genai.Client
	cfg   Config
}

var _ tutor.Provider = (*Client)(nil)

// New creates a Client. A missing API key is a configuration error.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.NewConfigError("missing Gemini API key (set GEMINI_API_KEY or --api-key)")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{genai: gc, cfg: cfg}, nil
}

// Generate returns the text of a single-turn completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Synthesize asks the speech model to read text aloud and returns the raw
// PCM16 payload of the first inline audio part.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.SpeechModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return inlineAudio(resp)
}

func inlineAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil {
		return nil, tutor.ErrNoAudio
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, tutor.ErrNoAudio
}

// NewChat opens a chat primed with systemInstruction.
func (c *Client) NewChat(ctx context.Context, systemInstruction string) (tutor.ChatSession, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	chat, err := c.genai.Chats.Create(ctx, c.cfg.Model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &chatSession{chat: chat}, nil
}

type chatSession struct {
	chat *genai.Chat
}

func (s *chatSession) Send(ctx context.Context, message string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send chat message: %w", err)
	}
	return resp.Text(), nil
}

// IsRetryable reports whether err is worth another attempt: rate limiting,
// server errors and transport failures are; client errors are not.
func IsRetryable(err error) bool {
	if err == nil || apperrors.IsContextError(err) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return !errors.Is(err, tutor.ErrNoAudio)
}
