// Package conversion is the job entry point: archive in, converted archive
// out, with job bookkeeping around the orchestrator run.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"legacyshift/internal/archive"
	"legacyshift/internal/gateway/repository/artifact"
	jobrepo "legacyshift/internal/gateway/repository/job"
	"legacyshift/internal/types"
)

// StatusUp is the liveness answer.
const StatusUp = "Up!"

// Runner executes one job. *orchestrator.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, job types.Job) ([]types.OutputFile, error)
}

// InputError rejects a request before the pipeline starts: unknown family,
// invalid archive or binary content.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return "invalid input: " + e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

type Result struct {
	JobID   string
	Archive []byte
	Files   int
}

// JobView is a job record plus a direct download link when the artifact
// backend can presign one.
type JobView struct {
	jobrepo.Record
	DownloadURL string `json:"download_url,omitempty"`
}

type Service struct {
	runner    Runner
	jobs      jobrepo.Store
	artifacts artifact.Store
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

// New wires the service. Nil stores fall back to in-memory ones.
func New(runner Runner, jobs jobrepo.Store, artifacts artifact.Store, log *zap.Logger) *Service {
	if jobs == nil {
		jobs = jobrepo.NewMemoryStore()
	}
	if artifacts == nil {
		artifacts = artifact.NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		runner:    runner,
		jobs:      jobs,
		artifacts: artifacts,
		log:       log.Named("conversion"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) Status() string { return StatusUp }

// Convert runs one job end to end. On a pipeline failure the returned Result
// still carries the job id.
func (s *Service) Convert(ctx context.Context, data []byte, family string) (Result, error) {
	if _, err := types.ParseFamily(family); err != nil {
		return Result{}, &InputError{Err: err}
	}
	files, err := archive.Extract(data)
	if err != nil {
		return Result{}, &InputError{Err: err}
	}
	return s.ConvertFiles(ctx, files, family)
}

// ConvertFiles runs a job over files that were already read, e.g. from a
// source directory.
func (s *Service) ConvertFiles(ctx context.Context, files []types.SourceFile, family string) (Result, error) {
	fam, err := types.ParseFamily(family)
	if err != nil {
		return Result{}, &InputError{Err: err}
	}
	if len(files) == 0 {
		return Result{}, &InputError{Err: archive.ErrEmptyArchive}
	}

	id := s.newID()
	log := s.log.With(zap.String("job_id", id), zap.String("family", string(fam)))
	rec := jobrepo.Record{
		ID:         id,
		Family:     string(fam),
		Status:     jobrepo.StatusRunning,
		InputFiles: len(files),
		CreatedAt:  s.now().UTC(),
	}
	s.save(ctx, log, rec)
	log.Info("job accepted", zap.Int("input_files", len(files)))

	out, err := s.runner.Run(ctx, types.Job{ID: id, Family: fam, InputFiles: files})
	if err != nil {
		s.finish(ctx, log, rec, 0, err)
		return Result{JobID: id}, err
	}
	zipped, err := archive.Build(out)
	if err != nil {
		err = fmt.Errorf("build result archive: %w", err)
		s.finish(ctx, log, rec, len(out), err)
		return Result{JobID: id}, err
	}

	if err := s.artifacts.Put(ctx, id, artifact.ResultName, zipped); err != nil {
		log.Warn("store result archive failed", zap.Error(err))
	} else {
		rec.Artifact = id + "/" + artifact.ResultName
	}
	s.finish(ctx, log, rec, len(out), nil)
	return Result{JobID: id, Archive: zipped, Files: len(out)}, nil
}

// Job returns the record of a previous job.
func (s *Service) Job(ctx context.Context, id string) (JobView, error) {
	rec, err := s.jobs.Get(ctx, id)
	if err != nil {
		return JobView{}, err
	}
	view := JobView{Record: rec}
	if rec.Artifact != "" {
		u, err := s.artifacts.URL(ctx, rec.ID, artifact.ResultName)
		if err != nil {
			s.log.Warn("presign result archive failed", zap.String("job_id", rec.ID), zap.Error(err))
		}
		view.DownloadURL = u
	}
	return view, nil
}

// Archive returns the stored result archive of a succeeded job.
func (s *Service) Archive(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Artifact == "" {
		return nil, artifact.ErrNotFound
	}
	return s.artifacts.Get(ctx, rec.ID, artifact.ResultName)
}

func (s *Service) finish(ctx context.Context, log *zap.Logger, rec jobrepo.Record, outputs int, err error) {
	done := s.now().UTC()
	rec.FinishedAt = &done
	rec.OutputFiles = outputs
	rec.Status = jobrepo.StatusSucceeded
	if err != nil {
		rec.Status = jobrepo.StatusFailed
		rec.Error = err.Error()
		log.Error("job failed", zap.Duration("elapsed", done.Sub(rec.CreatedAt)), zap.Error(err))
	} else {
		log.Info("job succeeded", zap.Int("output_files", outputs), zap.Duration("elapsed", done.Sub(rec.CreatedAt)))
	}
	s.save(ctx, log, rec)
}

// save records rec even when the request context is already cancelled. A
// storage failure is logged and does not affect the job outcome.
func (s *Service) save(ctx context.Context, log *zap.Logger, rec jobrepo.Record) {
	if err := s.jobs.Put(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("store job record failed", zap.String("status", string(rec.Status)), zap.Error(err))
	}
}

// IsInputError reports whether err rejects the request itself.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
