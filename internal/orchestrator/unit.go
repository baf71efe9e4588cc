package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"legacyshift/internal/pipeline"
	"legacyshift/internal/types"
)

// processUnit turns one file group into its contribution: the transformed
// files followed by the generated tests. It never writes shared state other
// than the migration bag.
func processUnit(
	ctx context.Context,
	c *pipeline.Clients,
	index types.FileIndex,
	group types.FileGroup,
	bag *migrationBag,
	log *zap.Logger,
) ([]types.OutputFile, error) {
	files := resolveMembers(index, group, log)
	log.Info("processing group", zap.Int("files", len(files)), zap.String("description", group.Description))

	cx, err := c.Context.Call(ctx, types.ContextRequest{
		GroupID:     group.ID,
		Description: group.Description,
		Files:       files,
	})
	if err != nil {
		return nil, err
	}
	bag.Add(cx.Context.LibraryMigrations...)

	tr, err := c.Transform.Call(ctx, types.TransformRequest{Files: files, Context: cx.Context})
	if err != nil {
		return nil, err
	}

	tg, err := c.TestGen.Call(ctx, types.TestGenRequest{Files: tr.Files, Context: cx.Context})
	if err != nil {
		return nil, err
	}

	out := make([]types.OutputFile, 0, len(tr.Files)+len(tg.TestFiles))
	out = append(out, tr.Files...)
	out = append(out, tg.TestFiles...)
	log.Info("group processed", zap.Int("converted", len(tr.Files)), zap.Int("tests", len(tg.TestFiles)))
	return out, nil
}

// resolveMembers maps member paths to input files, dropping paths the input
// set does not contain.
func resolveMembers(index types.FileIndex, group types.FileGroup, log *zap.Logger) []types.SourceFile {
	files := make([]types.SourceFile, 0, len(group.MemberPaths))
	for _, p := range group.MemberPaths {
		f, ok := index[p]
		if !ok {
			log.Warn("group references unknown file; dropping", zap.String("path", p))
			continue
		}
		files = append(files, f)
	}
	return files
}
