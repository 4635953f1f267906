package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/genai"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/tutor"
)

func textResponse(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), Config{APIKey: "  "})
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("New() error = %v, want ConfigError", err)
	}
	if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	c, err := New(context.Background(), Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.cfg.Model != DefaultModel || c.cfg.SpeechModel != DefaultSpeechModel || c.cfg.Voice != DefaultVoice {
		t.Errorf("defaults not applied: %+v", c.cfg)
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, DefaultModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "PGCD de 120 et 45") {
			t.Errorf("prompt missing from request body: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, textResponse("Le PGCD est 15."))
	})

	got, err := c.Generate(context.Background(), "explique le PGCD de 120 et 45")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Le PGCD est 15." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()
	pcm := []byte{0x01, 0x00, 0xff, 0x7f}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, DefaultSpeechModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"Kore"`) || !strings.Contains(string(body), "AUDIO") {
			t.Errorf("speech config missing from request body: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"audio/L16;codec=pcm;rate=24000","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(pcm))
	})

	got, err := c.Synthesize(context.Background(), "Lis ceci")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("Synthesize() = %v, want %v", got, pcm)
	}
}

func TestSynthesize_NoAudio(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, textResponse("pas de son"))
	})
	if _, err := c.Synthesize(context.Background(), "x"); !errors.Is(err, tutor.ErrNoAudio) {
		t.Errorf("Synthesize() error = %v, want ErrNoAudio", err)
	}
}

func TestChatKeepsHistory(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "tuteur") {
			t.Errorf("system instruction missing: %s", body)
		}
		if n == 2 && !strings.Contains(string(body), "première") {
			t.Errorf("second turn does not carry the first exchange: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, textResponse(fmt.Sprintf("réponse %d", n)))
	})

	chat, err := c.NewChat(context.Background(), "Tu es un tuteur")
	if err != nil {
		t.Fatalf("NewChat() error = %v", err)
	}
	if got, err := chat.Send(context.Background(), "première question"); err != nil || got != "réponse 1" {
		t.Fatalf("Send() = %q, %v", got, err)
	}
	if got, err := chat.Send(context.Background(), "deuxième question"); err != nil || got != "réponse 2" {
		t.Fatalf("Send() = %q, %v", got, err)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})
	_, err := c.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("Generate() error = nil, want error")
	}
	if !IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"server error", genai.APIError{Code: http.StatusBadGateway}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"no audio", tutor.ErrNoAudio, false},
		{"transport", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
