package models

import (
	"time"

	"github.com/google/uuid"
)

// AudiobookJob is one queued document-to-audio conversion. FilePath and
// ArtifactPath are local scratch locations and never leave the service.
type AudiobookJob struct {
	ID            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	FilePath      string    `json:"-"`
	Voice         string    `json:"voice"`
	Speed         float64   `json:"speed"`
	Language      string    `json:"language"`
	Format        string    `json:"format"`
	SplitChapters bool      `json:"split_chapters"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	ArtifactPath  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusReady      = "ready"
	JobStatusFailed     = "failed"
)
