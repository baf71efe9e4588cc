package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"legacyshift/internal/gateway/config"
	artifactrepo "legacyshift/internal/gateway/repository/artifact"
	jobrepo "legacyshift/internal/gateway/repository/job"
)

type gatewayStores struct {
	artifact artifactrepo.Store
	jobs     jobrepo.Store
	closers  []func() error
}

func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}

	artifactStore, err := chooseArtifactStore(cfg, log)
	if err != nil {
		return nil, err
	}
	stores.artifact = artifactStore

	var origin jobrepo.Store
	if dsn := strings.TrimSpace(cfg.JobStore.DSN); dsn != "" {
		pg, err := jobrepo.NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open job store: %w", err)
		}
		stores.closers = append(stores.closers, pg.Close)
		origin = pg
		log.Info("job store: postgres")
	} else {
		origin = jobrepo.NewMemoryStore()
		log.Info("job store: in-memory")
	}
	cached, err := jobrepo.NewCachedStore(origin, cfg.JobStore.CacheSize)
	if err != nil {
		return nil, err
	}
	stores.jobs = cached
	return stores, nil
}

func chooseArtifactStore(cfg *config.Config, log *zap.Logger) (artifactrepo.Store, error) {
	if !cfg.Artifact.CanUseS3() {
		if cfg.Artifact.Enabled {
			log.Warn("artifact store: using in-memory fallback (s3 config incomplete)")
		} else {
			log.Info("artifact store: in-memory")
		}
		return artifactrepo.NewMemoryStore(), nil
	}
	s3Cfg := artifactrepo.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
	}
	s3Store, err := artifactrepo.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
	}
	log.Info("artifact store: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
	return s3Store, nil
}

func (s *gatewayStores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
