package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
	"github.com/agbru/gcdtutor/internal/euclid"
	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/orchestration"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// stepView is the wire form of one Euclidean step.
type stepView struct {
	Dividend  int64 `json:"dividend"`
	Divisor   int64 `json:"divisor"`
	Quotient  int64 `json:"quotient"`
	Remainder int64 `json:"remainder"`
}

type traceView struct {
	A     int64      `json:"a"`
	B     int64      `json:"b"`
	Steps []stepView `json:"steps"`
	GCD   int64      `json:"gcd"`
}

// sessionView is the wire form of a session snapshot, with the control
// states already derived.
type sessionView struct {
	Generation    uint64                  `json:"generation"`
	Trace         *traceView              `json:"trace"`
	Explanation   string                  `json:"explanation"`
	Transcript    []orchestration.Message `json:"transcript"`
	Loading       bool                    `json:"loading"`
	ChatAvailable bool                    `json:"chatAvailable"`
	ChatPending   bool                    `json:"chatPending"`
	Speaking      bool                    `json:"speaking"`
	CanAsk        bool                    `json:"canAsk"`
	CanSpeak      bool                    `json:"canSpeak"`
}

func newTraceView(tr euclid.Trace) *traceView {
	v := &traceView{A: tr.A, B: tr.B, GCD: tr.GCD, Steps: make([]stepView, len(tr.Steps))}
	for i, st := range tr.Steps {
		v.Steps[i] = stepView{
			Dividend:  st.Dividend,
			Divisor:   st.Divisor,
			Quotient:  st.Quotient(),
			Remainder: st.Remainder,
		}
	}
	return v
}

func newSessionView(snap orchestration.Snapshot) sessionView {
	v := sessionView{
		Generation:    snap.Generation,
		Explanation:   snap.Explanation,
		Transcript:    snap.Transcript,
		Loading:       snap.Loading,
		ChatAvailable: snap.ChatAvailable,
		ChatPending:   snap.ChatPending,
		Speaking:      snap.Speaking,
		CanAsk:        snap.CanAsk(),
		CanSpeak:      snap.CanSpeak(),
	}
	if v.Transcript == nil {
		v.Transcript = []orchestration.Message{}
	}
	if snap.Trace != nil {
		v.Trace = newTraceView(*snap.Trace)
	}
	return v
}

// operand accepts either a JSON string or a JSON number so that "120" and
// 120 are both valid; validation happens in euclid.ParseOperands.
type operand string

func (o *operand) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = operand(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}
	*o = operand(data)
	return nil
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("malformed request body")

// decodeJSONBody reads a single JSON object of at most maxBytes into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadRequest)
	}
	return nil
}

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", err)
	}
}

// writeError writes the JSON error body.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondError maps err to a status code and an error code. Input errors
// carry the user-facing sentence in the tutor's language.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, detail := classify(err)
	if detail.Code == "invalid_input" {
		detail.Message = s.tutor.Phrases().InvalidInput
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, logging.Int("status", status))
	}
	s.writeJSON(w, status, errorBody{Error: detail})
}

func classify(err error) (int, errorDetail) {
	var (
		valErr    apperrors.ValidationError
		collabErr apperrors.CollaboratorError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, errorDetail{Code: "invalid_input", Message: valErr.Message, Field: valErr.Field}
	case errors.Is(err, orchestration.ErrEmptyMessage):
		return http.StatusBadRequest, errorDetail{Code: "empty_message", Message: err.Error()}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorDetail{Code: "bad_request", Message: err.Error()}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errorDetail{Code: "too_large", Message: "request body too large"}
	case errors.Is(err, orchestration.ErrStale):
		return http.StatusConflict, errorDetail{Code: "stale", Message: err.Error()}
	case errors.Is(err, orchestration.ErrChatBusy):
		return http.StatusConflict, errorDetail{Code: "chat_busy", Message: err.Error()}
	case errors.Is(err, orchestration.ErrNoChat):
		return http.StatusConflict, errorDetail{Code: "no_chat", Message: err.Error()}
	case errors.Is(err, orchestration.ErrSpeechBusy):
		return http.StatusConflict, errorDetail{Code: "speech_busy", Message: err.Error()}
	case errors.Is(err, orchestration.ErrNothingToSay):
		return http.StatusConflict, errorDetail{Code: "nothing_to_say", Message: err.Error()}
	case errors.Is(err, orchestration.ErrExplainBusy):
		return http.StatusConflict, errorDetail{Code: "explain_busy", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorDetail{Code: "timeout", Message: "the tutor took too long to answer"}
	case errors.As(err, &collabErr):
		return http.StatusBadGateway, errorDetail{Code: "upstream", Message: fmt.Sprintf("%s unavailable", collabErr.Collaborator)}
	default:
		return http.StatusInternalServerError, errorDetail{Code: "internal", Message: "internal error"}
	}
}
