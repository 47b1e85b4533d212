// Package jobs persists audiobook job records in postgres.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/narrato/narrato/internal/models"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const jobColumns = `id, filename, file_path, voice, speed, language, format,
	split_chapters, status, error, artifact_path, created_at, updated_at`

// CreateRequest carries the validated parameters of a new job.
type CreateRequest struct {
	Filename      string
	FilePath      string
	Voice         string
	Speed         float64
	Language      string
	Format        string
	SplitChapters bool
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.AudiobookJob, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO audiobook_jobs (id, filename, file_path, voice, speed, language, format, split_chapters, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+jobColumns,
		uuid.New(), req.Filename, req.FilePath, req.Voice, req.Speed,
		req.Language, req.Format, req.SplitChapters, models.JobStatusPending,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.AudiobookJob, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM audiobook_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.AudiobookJob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+jobColumns+` FROM audiobook_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []models.AudiobookJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM audiobook_jobs WHERE id = $1`, id)
	return err
}

// MarkProcessing transitions a job to processing.
func (s *Service) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.JobStatusProcessing, "", "")
}

// MarkReady records the finished artifact.
func (s *Service) MarkReady(ctx context.Context, id uuid.UUID, artifactPath string) error {
	return s.setStatus(ctx, id, models.JobStatusReady, "", artifactPath)
}

// MarkFailed records the terminal error.
func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return s.setStatus(ctx, id, models.JobStatusFailed, errMsg, "")
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status, errMsg, artifactPath string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE audiobook_jobs SET status = $1, error = $2, artifact_path = $3, updated_at = now() WHERE id = $4`,
		status, errMsg, artifactPath, id)
	if err != nil {
		return fmt.Errorf("update job %s to %s: %w", id, status, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.AudiobookJob, error) {
	var j models.AudiobookJob
	err := row.Scan(&j.ID, &j.Filename, &j.FilePath, &j.Voice, &j.Speed,
		&j.Language, &j.Format, &j.SplitChapters, &j.Status, &j.Error,
		&j.ArtifactPath, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
