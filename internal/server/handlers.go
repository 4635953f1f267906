package server

import (
	"bytes"
	"embed"
	"net/http"
	"strconv"

	"github.com/agbru/gcdtutor/internal/audio"
	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/sysmon"
	"github.com/agbru/gcdtutor/internal/tutor"
)

//go:embed widget
var widgetFS embed.FS

type calculateRequest struct {
	A operand `json:"a"`
	B operand `json:"b"`
}

type explainRequest struct {
	// Generation defaults to the current calculation when omitted.
	Generation *uint64 `json:"generation"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply   orchestration.Message `json:"reply"`
	Session sessionView           `json:"session"`
}

type healthResponse struct {
	Status   string        `json:"status"`
	Version  string        `json:"version,omitempty"`
	Sessions int           `json:"sessions"`
	Report   sysmon.Report `json:"report"`
}

// pageData feeds the widget template. Captions follow the tutor language.
type pageData struct {
	Lang     string
	Title    string
	Operands string
	Submit   string
	Steps    string
	Tutor    string
	Listen   string
	Ask      string
	Send     string
	Divides  string
	Rest     string
	Zero     string
	Result   string
	Thinking string
}

func (s *Server) pageData() pageData {
	p := s.tutor.Phrases()
	d := pageData{
		Lang:    string(s.tutor.Lang()),
		Divides: p.Divides,
		Rest:    p.Remainder,
		Zero:    p.ZeroReached,
		Result:  p.Result,
	}
	if s.tutor.Lang() == tutor.English {
		d.Title, d.Operands, d.Submit = "GCD Tutor", "Two positive integers", "Calculate"
		d.Steps, d.Tutor, d.Listen = "Steps", "Tutor", "Listen"
		d.Ask, d.Send, d.Thinking = "Ask a question about this calculation...", "Send", "The tutor is thinking..."
		return d
	}
	d.Title, d.Operands, d.Submit = "Professeur PGCD", "Deux entiers positifs", "Calculer"
	d.Steps, d.Tutor, d.Listen = "Étapes", "Professeur", "Écouter"
	d.Ask, d.Send, d.Thinking = "Pose une question sur ce calcul...", "Envoyer", "Le professeur réfléchit..."
	return d
}

// handleIndex serves the widget page and makes sure the browser has a
// session cookie.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessions.Get(w, r)
	s.metrics.SetSessions(s.sessions.Len())

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.pageData()); err != nil {
		s.logger.Error("failed to render widget", err)
		s.writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCalculate validates the operands and returns the trace at once.
// The explanation is fetched by a following POST /api/explain.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSONBody(w, r, s.config.Security.MaxBodyBytes, &req); err != nil {
		s.respondError(w, err)
		return
	}
	session := s.sessions.Get(w, r)
	s.metrics.SetSessions(s.sessions.Len())

	snap, err := session.Submit(string(req.A), string(req.B))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Debug("calculation", logging.Uint64("generation", snap.Generation),
		logging.Int64("gcd", snap.Trace.GCD))
	s.writeJSON(w, http.StatusOK, newSessionView(snap))
}

// handleExplain fetches the explanation and opens the chat for a
// calculation. A superseded calculation answers 409 stale.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSONBody(w, r, s.config.Security.MaxBodyBytes, &req); err != nil {
		s.respondError(w, err)
		return
	}
	session, ok := s.sessions.Lookup(r)
	if !ok {
		s.respondError(w, orchestration.ErrStale)
		return
	}
	gen := session.Generation()
	if req.Generation != nil {
		gen = *req.Generation
	}

	ctx, cancel := s.callContext(r)
	defer cancel()
	if err := session.Enrich(ctx, gen); err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionView(session.Snapshot()))
}

// handleChat forwards a follow-up question and returns the reply, which
// may be the apology.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSONBody(w, r, s.config.Security.MaxBodyBytes, &req); err != nil {
		s.respondError(w, err)
		return
	}
	session, ok := s.sessions.Lookup(r)
	if !ok {
		s.respondError(w, orchestration.ErrNoChat)
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()
	reply, err := session.Ask(ctx, req.Message)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Session: newSessionView(session.Snapshot())})
}

// handleSpeech synthesizes the explanation and returns it as WAV.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Lookup(r)
	if !ok {
		s.respondError(w, orchestration.ErrNothingToSay)
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()
	pcm, err := session.Speak(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, pcm, audio.SampleRate, audio.Channels); err != nil {
		s.respondError(w, err)
		return
	}
	seconds := audio.Duration(pcm, audio.SampleRate, audio.Channels)
	s.logger.Debug("speech ready", logging.Int("bytes", len(pcm)), logging.String("duration", strconv.FormatFloat(seconds, 'f', 3, 64)))
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Audio-Duration", strconv.FormatFloat(seconds, 'f', 3, 64))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleSession returns the current state, creating an empty session if
// the browser has none.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Get(w, r)
	s.writeJSON(w, http.StatusOK, newSessionView(session.Snapshot()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	n := s.sessions.Len()
	s.metrics.SetSessions(n)
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  s.config.Version,
		Sessions: n,
		Report:   sysmon.Snapshot(s.started),
	})
}
