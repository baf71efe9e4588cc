// Package orchestrator drives one conversion job: grouping, concurrent
// per-group processing, aggregation, scaffolding and reconciliation of
// colliding output paths.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legacyshift/internal/pipeline"
	"legacyshift/internal/types"
)

// Resolver selects the stage clients of a family. *pipeline.Registry
// implements it.
type Resolver interface {
	For(family types.Family) (*pipeline.Clients, error)
}

type Orchestrator struct {
	clients     Resolver
	log         *zap.Logger
	maxParallel int
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMaxParallel bounds how many units and merges run at once. n <= 0 means
// unbounded.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) { o.maxParallel = n }
}

func New(clients Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{clients: clients, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes job and returns its output files, each path exactly once.
// Any stage failure fails the whole job with a *JobError; no partial output
// is returned.
func (o *Orchestrator) Run(ctx context.Context, job types.Job) ([]types.OutputFile, error) {
	start := time.Now()
	log := o.log.With(zap.String("job_id", job.ID), zap.String("family", string(job.Family)))
	fail := func(phase Phase, err error) ([]types.OutputFile, error) {
		jerr := asJobError(job.ID, phase, err)
		log.Error("job phase",
			zap.String("phase", string(PhaseFailed)),
			zap.String("failed_phase", string(jerr.Phase)),
			zap.Int("group", jerr.Group),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(jerr.Err),
		)
		return nil, jerr
	}

	c, err := o.clients.For(job.Family)
	if err != nil {
		return fail(PhaseGrouping, err)
	}

	log.Info("job phase", zap.String("phase", string(PhaseGrouping)), zap.Int("input_files", len(job.InputFiles)))
	grouped, err := c.Grouper.Call(ctx, types.GroupingRequest{Files: job.InputFiles})
	if err != nil {
		return fail(PhaseGrouping, err)
	}

	log.Info("job phase", zap.String("phase", string(PhaseProcessing)), zap.Int("groups", len(grouped.Groups)))
	bag := &migrationBag{}
	contributions, err := o.process(ctx, job, c, grouped.Groups, bag, log)
	if err != nil {
		return fail(PhaseProcessing, err)
	}

	log.Info("job phase", zap.String("phase", string(PhaseAggregating)))
	rec := newReconciler()
	for _, files := range contributions {
		rec.Add(files...)
	}

	libs := bag.Distinct()
	paths := rec.Paths()
	log.Info("job phase",
		zap.String("phase", string(PhaseScaffolding)),
		zap.Int("libraries", len(libs)),
		zap.Int("paths", len(paths)),
	)
	scaffold, err := c.Scaffold.Call(ctx, types.ScaffoldRequest{LibraryMigrations: libs, AllOutputPaths: paths})
	if err != nil {
		return fail(PhaseScaffolding, err)
	}
	rec.Add(scaffold.Files...)

	if pending := rec.Collisions(); len(pending) > 0 {
		log.Info("job phase", zap.String("phase", string(PhaseReconciling)), zap.Int("collisions", len(pending)))
		merged, err := o.reconcile(ctx, job, c, pending, log)
		if err != nil {
			return fail(PhaseReconciling, err)
		}
		for i, col := range pending {
			rec.Resolve(col.Path, merged[i])
		}
	}

	out := rec.Files()
	log.Info("job phase",
		zap.String("phase", string(PhaseDone)),
		zap.Int("output_files", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// process runs one unit per group concurrently and joins all of them before
// returning. Units are not cancelled when a sibling fails; the first failure
// is returned after every unit has finished.
func (o *Orchestrator) process(
	ctx context.Context,
	job types.Job,
	c *pipeline.Clients,
	groups []types.FileGroup,
	bag *migrationBag,
	log *zap.Logger,
) ([][]types.OutputFile, error) {
	index := types.IndexFiles(job.InputFiles)
	results := make([][]types.OutputFile, len(groups))

	var g errgroup.Group
	if o.maxParallel > 0 {
		g.SetLimit(o.maxParallel)
	}
	for i, grp := range groups {
		g.Go(func() error {
			ulog := log.With(zap.Int("group", grp.ID))
			files, err := processUnit(ctx, c, index, grp, bag, ulog)
			if err != nil {
				ulog.Error("group failed", zap.Error(err))
				return &JobError{JobID: job.ID, Phase: PhaseProcessing, Group: grp.ID, Err: err}
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reconcile issues one merge call per collision concurrently. merged[i]
// resolves pending[i].
func (o *Orchestrator) reconcile(
	ctx context.Context,
	job types.Job,
	c *pipeline.Clients,
	pending []collision,
	log *zap.Logger,
) ([]types.OutputFile, error) {
	merged := make([]types.OutputFile, len(pending))

	var g errgroup.Group
	if o.maxParallel > 0 {
		g.SetLimit(o.maxParallel)
	}
	for i, col := range pending {
		g.Go(func() error {
			resp, err := c.Merge.Call(ctx, types.MergeRequest{Duplicates: col.Files})
			if err != nil {
				log.Error("merge failed", zap.String("path", col.Path), zap.Int("versions", len(col.Files)), zap.Error(err))
				return &JobError{JobID: job.ID, Phase: PhaseReconciling, Path: col.Path, Err: err}
			}
			if resp.MergedFile.Path != col.Path {
				err := fmt.Errorf("%w: got %q", pipeline.ErrMergePathMismatch, resp.MergedFile.Path)
				return &JobError{JobID: job.ID, Phase: PhaseReconciling, Path: col.Path, Err: err}
			}
			log.Info("merged", zap.String("path", col.Path), zap.Int("versions", len(col.Files)))
			merged[i] = resp.MergedFile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

func asJobError(jobID string, phase Phase, err error) *JobError {
	var je *JobError
	if errors.As(err, &je) {
		return je
	}
	return &JobError{JobID: jobID, Phase: phase, Err: err}
}
