// Package workers holds the asynq task handlers run by the worker binary.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/narrato/narrato/internal/archive"
	"github.com/narrato/narrato/internal/audio"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/jobs"
	"github.com/narrato/narrato/internal/models"
	"github.com/narrato/narrato/internal/queue"
	"github.com/narrato/narrato/internal/storage"
	"github.com/narrato/narrato/internal/synth"
	"github.com/narrato/narrato/pkg/textextract"
)

// AudiobookWorker converts an uploaded document into audio: extract text,
// optionally segment into chapters, run each chapter through the chunked
// synthesis pipeline, encode, and (for chapter jobs) bundle into a zip.
type AudiobookWorker struct {
	jobs     *jobs.Service
	store    *storage.Store
	engine   engine.Engine
	pipeline *synth.Pipeline
	encoder  *audio.Encoder
}

func NewAudiobookWorker(js *jobs.Service, store *storage.Store, e engine.Engine, p *synth.Pipeline, enc *audio.Encoder) *AudiobookWorker {
	return &AudiobookWorker{
		jobs:     js,
		store:    store,
		engine:   e,
		pipeline: p,
		encoder:  enc,
	}
}

func (w *AudiobookWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AudiobookSynthesizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %w", err)
	}

	job, err := w.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	slog.Info("processing audiobook job",
		"job_id", job.ID, "filename", job.Filename, "split_chapters", job.SplitChapters)

	if err := w.jobs.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	artifact, err := w.process(ctx, job)

	// The uploaded source belongs to this job and goes away on every
	// outcome; the artifact stays until the job is downloaded or deleted.
	w.store.Remove(job.FilePath)

	if err != nil {
		slog.Error("audiobook job failed", "job_id", job.ID, "error", err)
		if markErr := w.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			return markErr
		}
		// Synthesis and extraction failures are terminal for the job;
		// re-running the task would fail the same way.
		return fmt.Errorf("job %s: %w: %w", job.ID, err, asynq.SkipRetry)
	}

	if err := w.jobs.MarkReady(ctx, job.ID, artifact); err != nil {
		return err
	}
	slog.Info("audiobook job ready", "job_id", job.ID, "artifact", filepath.Base(artifact))
	return nil
}

func (w *AudiobookWorker) process(ctx context.Context, job *models.AudiobookJob) (string, error) {
	// Parameters were validated at enqueue time; re-resolving here keeps
	// the worker correct if the model catalog changed between restarts.
	voice, err := engine.ParseVoice(ctx, w.engine, job.Voice)
	if err != nil {
		return "", err
	}
	if err := engine.ValidateLanguage(ctx, w.engine, job.Language); err != nil {
		return "", err
	}
	format, err := audio.ParseFormat(job.Format)
	if err != nil {
		return "", err
	}

	doc, err := textextract.ExtractFile(job.FilePath)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", job.Filename, err)
	}

	req := synth.Request{Voice: voice, Speed: job.Speed, Lang: job.Language}

	if !job.SplitChapters {
		req.Text = doc.Text()
		out, err := w.pipeline.Speak(ctx, req)
		if err != nil {
			return "", err
		}
		artifact := w.store.OutputPath(job.ID.String() + "." + string(format))
		if err := w.encoder.EncodeToFile(ctx, artifact, out.Samples, out.SampleRate, format); err != nil {
			return "", err
		}
		return artifact, nil
	}

	chapters := synth.SegmentChapters(doc)
	slog.Info("segmented document", "job_id", job.ID, "chapters", len(chapters))

	artifact := w.store.OutputPath(job.ID.String() + ".zip")
	err = archive.Bundle(artifact, func(scratch string) ([]string, error) {
		var files []string
		for i, ch := range chapters {
			req.Text = ch.Content
			out, err := w.pipeline.Speak(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("chapter %d (%s): %w", i+1, ch.Title, err)
			}
			path := filepath.Join(scratch, fmt.Sprintf("chapter_%d.%s", i+1, format))
			if err := w.encoder.EncodeToFile(ctx, path, out.Samples, out.SampleRate, format); err != nil {
				return nil, fmt.Errorf("encode chapter %d: %w", i+1, err)
			}
			files = append(files, path)
		}
		return files, nil
	})
	if err != nil {
		return "", err
	}
	return artifact, nil
}
