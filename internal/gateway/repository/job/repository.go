package job

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is the persisted summary of one conversion job.
type Record struct {
	ID          string     `json:"id"`
	Family      string     `json:"family"`
	Status      Status     `json:"status"`
	InputFiles  int        `json:"input_files"`
	OutputFiles int        `json:"output_files"`
	Error       string     `json:"error,omitempty"`
	Artifact    string     `json:"artifact,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Store keeps job records. Put inserts or replaces by ID.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
}

var ErrNotFound = errors.New("job not found")
