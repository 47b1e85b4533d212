package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/narrato/narrato/internal/audio"
	"github.com/narrato/narrato/internal/config"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/jobs"
	"github.com/narrato/narrato/internal/models"
	"github.com/narrato/narrato/internal/queue"
	"github.com/narrato/narrato/internal/storage"
	"github.com/narrato/narrato/pkg/textextract"
)

const maxUploadBytes = 100 << 20 // 100 MiB

// AudiobookHandler manages long-running document-to-audio jobs. Uploads
// are validated and persisted here, then handed to the worker process
// through the queue.
type AudiobookHandler struct {
	jobs     *jobs.Service
	store    *storage.Store
	queue    *queue.Client
	engine   engine.Engine
	defaults config.SynthesisConfig
}

func NewAudiobookHandler(js *jobs.Service, store *storage.Store, qc *queue.Client, e engine.Engine, defaults config.SynthesisConfig) *AudiobookHandler {
	return &AudiobookHandler{
		jobs:     js,
		store:    store,
		queue:    qc,
		engine:   e,
		defaults: defaults,
	}
}

// Create accepts a multipart upload and enqueues synthesis. Every
// parameter that can fail validation is checked before anything is
// persisted, so a rejected request leaves no state behind.
func (h *AudiobookHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !textextract.Supported(ext) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unsupported file type " + ext + ", supported: " + strings.Join(textextract.SupportedExtensions(), ", "),
		})
		return
	}

	voiceSpec := formValue(r, "voice", h.defaults.DefaultVoice)
	lang := formValue(r, "lang", h.defaults.DefaultLanguage)
	formatStr := formValue(r, "format", string(audio.FormatWAV))
	splitChapters := r.FormValue("split_chapters") == "true"

	speed := h.defaults.DefaultSpeed
	if raw := r.FormValue("speed"); raw != "" {
		speed, err = strconv.ParseFloat(raw, 64)
		if err != nil || speed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "speed must be a positive number"})
			return
		}
	}

	format, err := audio.ParseFormat(formatStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := engine.ValidateLanguage(r.Context(), h.engine, lang); err != nil {
		writeError(w, err)
		return
	}
	if _, err := engine.ParseVoice(r.Context(), h.engine, voiceSpec); err != nil {
		writeError(w, err)
		return
	}

	path, err := h.store.SaveUpload(file, ext)
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), jobs.CreateRequest{
		Filename:      header.Filename,
		FilePath:      path,
		Voice:         voiceSpec,
		Speed:         speed,
		Language:      lang,
		Format:        string(format),
		SplitChapters: splitChapters,
	})
	if err != nil {
		h.store.Remove(path)
		writeError(w, err)
		return
	}

	if err := h.queue.EnqueueAudiobookSynthesize(queue.AudiobookSynthesizePayload{JobID: job.ID.String()}); err != nil {
		h.store.Remove(path)
		h.jobs.MarkFailed(r.Context(), job.ID, "failed to enqueue job")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// Get returns a job's current status.
func (h *AudiobookHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// List returns jobs newest first.
func (h *AudiobookHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	list, err := h.jobs.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.AudiobookJob{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": list})
}

// Download streams the finished artifact: a single audio file, or a zip
// of per-chapter files when the job was created with split_chapters.
func (h *AudiobookHandler) Download(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobFromRequest(w, r)
	if !ok {
		return
	}
	if job.Status != models.JobStatusReady {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "job is " + job.Status + ", not ready",
		})
		return
	}

	contentType := "application/zip"
	if !job.SplitChapters {
		if format, err := audio.ParseFormat(job.Format); err == nil {
			contentType = format.ContentType()
		}
	}
	serveFile(w, job.ArtifactPath, contentType, filepath.Base(job.ArtifactPath))
}

// Delete removes the job row and any files it still owns.
func (h *AudiobookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobFromRequest(w, r)
	if !ok {
		return
	}

	h.store.Remove(job.FilePath)
	h.store.Remove(job.ArtifactPath)

	if err := h.jobs.Delete(r.Context(), job.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AudiobookHandler) jobFromRequest(w http.ResponseWriter, r *http.Request) (*models.AudiobookJob, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job id"})
		return nil, false
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), pgx.ErrNoRows.Error()) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		} else {
			writeError(w, err)
		}
		return nil, false
	}
	return job, true
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
