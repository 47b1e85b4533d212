package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tokenLimitSignature is the error text the Kokoro sidecar produces when a
// chunk overflows the model's 510-token phoneme window.
const tokenLimitSignature = "index 510 is out of bounds"

// HTTPEngineConfig holds configuration for the Kokoro sidecar client.
type HTTPEngineConfig struct {
	BaseURL string        // default: "http://localhost:8880"
	Timeout time.Duration // default: 5m; synthesis of a full chunk is slow on CPU
}

// HTTPEngine talks to a Kokoro ONNX sidecar over JSON/HTTP. The voice and
// language catalogs are fixed for the lifetime of the loaded model, so they
// are fetched once and cached.
type HTTPEngine struct {
	cfg        HTTPEngineConfig
	httpClient *http.Client

	mu        sync.Mutex
	voices    []string
	languages []string
}

// NewHTTPEngine creates an HTTPEngine with defaults applied.
func NewHTTPEngine(cfg HTTPEngineConfig) *HTTPEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8880"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &HTTPEngine{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type createRequest struct {
	Text  string    `json:"text"`
	Voice string    `json:"voice,omitempty"`
	Style []float64 `json:"style,omitempty"`
	Speed float64   `json:"speed,omitempty"`
	Lang  string    `json:"lang,omitempty"`
}

type createResponse struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}

// Create synthesizes one piece of text. The sidecar's "index 510 is out of
// bounds" failure is surfaced as *TokenLimitError so the pipeline can
// re-chunk and retry; every other non-2xx response is terminal.
func (e *HTTPEngine) Create(ctx context.Context, text string, voice Voice, speed float64, lang string) ([]float64, int, error) {
	body := createRequest{
		Text:  text,
		Speed: speed,
		Lang:  lang,
	}
	if len(voice.Style) > 0 {
		body.Style = voice.Style
	} else {
		body.Voice = voice.ID
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/synthesize", bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readError(resp.Body, resp.StatusCode)
		if strings.Contains(msg, tokenLimitSignature) {
			return nil, 0, &TokenLimitError{Msg: msg}
		}
		return nil, 0, fmt.Errorf("synthesis failed: %s", msg)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("decode synthesis response: %w", err)
	}
	if out.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("synthesis returned invalid sample rate %d", out.SampleRate)
	}
	return out.Samples, out.SampleRate, nil
}

// Voices returns the loaded model's voice catalog.
func (e *HTTPEngine) Voices(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.voices != nil {
		return e.voices, nil
	}

	var out struct {
		Voices []string `json:"voices"`
	}
	if err := e.getJSON(ctx, "/voices", &out); err != nil {
		return nil, err
	}
	e.voices = out.Voices
	return e.voices, nil
}

// Languages returns the loaded model's language catalog.
func (e *HTTPEngine) Languages(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.languages != nil {
		return e.languages, nil
	}

	var out struct {
		Languages []string `json:"languages"`
	}
	if err := e.getJSON(ctx, "/languages", &out); err != nil {
		return nil, err
	}
	e.languages = out.Languages
	return e.languages, nil
}

// VoiceStyle fetches the style vector for one voice, used to build blends.
func (e *HTTPEngine) VoiceStyle(ctx context.Context, voiceID string) ([]float64, error) {
	var out struct {
		Style []float64 `json:"style"`
	}
	if err := e.getJSON(ctx, "/voices/"+voiceID+"/style", &out); err != nil {
		return nil, err
	}
	return out.Style, nil
}

// Ping reports whether the sidecar is reachable and its model is loaded.
func (e *HTTPEngine) Ping(ctx context.Context) error {
	_, err := e.Languages(ctx)
	return err
}

func (e *HTTPEngine) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine %s failed: %s", path, readError(resp.Body, resp.StatusCode))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readError(r io.Reader, status int) string {
	data, _ := io.ReadAll(io.LimitReader(r, 8192))
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if len(data) > 0 {
		return fmt.Sprintf("status %d: %s", status, data)
	}
	return fmt.Sprintf("status %d", status)
}
