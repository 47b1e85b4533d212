package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/narrato/narrato/internal/audio"
	"github.com/narrato/narrato/internal/config"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/storage"
	"github.com/narrato/narrato/internal/synth"
)

// SpeechHandler serves synchronous text synthesis and the voice/language
// catalogs.
type SpeechHandler struct {
	engine   engine.Engine
	pipeline *synth.Pipeline
	encoder  *audio.Encoder
	store    *storage.Store
	defaults config.SynthesisConfig
}

func NewSpeechHandler(e engine.Engine, p *synth.Pipeline, enc *audio.Encoder, store *storage.Store, defaults config.SynthesisConfig) *SpeechHandler {
	return &SpeechHandler{
		engine:   e,
		pipeline: p,
		encoder:  enc,
		store:    store,
		defaults: defaults,
	}
}

type speakRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Lang   string  `json:"lang,omitempty"`
	Format string  `json:"format,omitempty"`
}

// Speak synthesizes the request text and streams back the encoded file.
// All parameters are validated before the first engine call; the synthesis
// itself blocks this handler's goroutine while the request-accepting path
// stays responsive.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}
	if req.Voice == "" {
		req.Voice = h.defaults.DefaultVoice
	}
	if req.Lang == "" {
		req.Lang = h.defaults.DefaultLanguage
	}
	if req.Speed == 0 {
		req.Speed = h.defaults.DefaultSpeed
	}
	if req.Speed <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "speed must be positive"})
		return
	}
	if req.Format == "" {
		req.Format = string(audio.FormatWAV)
	}

	format, err := audio.ParseFormat(req.Format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := engine.ValidateLanguage(r.Context(), h.engine, req.Lang); err != nil {
		writeError(w, err)
		return
	}
	voice, err := engine.ParseVoice(r.Context(), h.engine, req.Voice)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.pipeline.Speak(r.Context(), synth.Request{
		Text:  req.Text,
		Voice: voice,
		Speed: req.Speed,
		Lang:  req.Lang,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Encode through a scratch file owned by this request.
	path := h.store.OutputPath(uuid.NewString() + "." + string(format))
	defer h.store.Remove(path)

	if err := h.encoder.EncodeToFile(r.Context(), path, out.Samples, out.SampleRate, format); err != nil {
		writeError(w, err)
		return
	}
	serveFile(w, path, format.ContentType(), "output."+string(format))
}

// Voices returns the engine's voice catalog.
func (h *SpeechHandler) Voices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.engine.Voices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"voices": voices})
}

// Languages returns the engine's language catalog.
func (h *SpeechHandler) Languages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.engine.Languages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"languages": languages})
}

// writeError maps pipeline errors onto the client/server boundary:
// validation problems are the caller's fault, everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	if engine.IsValidation(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func serveFile(w http.ResponseWriter, path, contentType, downloadName string) {
	f, err := os.Open(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "artifact unavailable"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "artifact unavailable"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", downloadName))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
