package orchestrator

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"legacyshift/internal/pipeline"
	"legacyshift/internal/types"
)

type staticResolver struct{ c *pipeline.Clients }

func (s staticResolver) For(types.Family) (*pipeline.Clients, error) { return s.c, nil }

// recorder captures what the stub stages were asked.
type recorder struct {
	mu            sync.Mutex
	contextReqs   []types.ContextRequest
	scaffoldCalls int
	scaffoldReq   types.ScaffoldRequest
	mergeReqs     map[string]types.MergeRequest
}

func (r *recorder) contexts() []types.ContextRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.ContextRequest(nil), r.contextReqs...)
}

func renameExt(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}

// stubClients answers every stage deterministically:
// grouping uses groups, context reports libs[groupID], transform maps
// X.legacy to X.new, testgen maps X.new to X.test, scaffold emits
// Boot.config and merge returns the first duplicate with content "MERGED".
func stubClients(rec *recorder, groups []types.FileGroup, libs map[int][]types.LibraryMigration) *pipeline.Clients {
	rec.mergeReqs = map[string]types.MergeRequest{}
	return &pipeline.Clients{
		Family: types.FamilyJaxRS,
		Grouper: pipeline.CallerFunc[types.GroupingRequest, types.GroupingResponse](
			func(context.Context, types.GroupingRequest) (types.GroupingResponse, error) {
				return types.GroupingResponse{Groups: groups}, nil
			}),
		Context: pipeline.CallerFunc[types.ContextRequest, types.ContextResponse](
			func(_ context.Context, req types.ContextRequest) (types.ContextResponse, error) {
				rec.mu.Lock()
				rec.contextReqs = append(rec.contextReqs, req)
				rec.mu.Unlock()
				return types.ContextResponse{Context: types.GroupContext{
					Functionalities:   []string{req.Description},
					LibraryMigrations: libs[req.GroupID],
				}}, nil
			}),
		Transform: pipeline.CallerFunc[types.TransformRequest, types.TransformResponse](
			func(_ context.Context, req types.TransformRequest) (types.TransformResponse, error) {
				var out []types.OutputFile
				for _, f := range req.Files {
					out = append(out, types.OutputFile{Path: renameExt(f.Path, ".new"), Content: "new " + f.Content})
				}
				return types.TransformResponse{Files: out}, nil
			}),
		TestGen: pipeline.CallerFunc[types.TestGenRequest, types.TestGenResponse](
			func(_ context.Context, req types.TestGenRequest) (types.TestGenResponse, error) {
				var out []types.OutputFile
				for _, f := range req.Files {
					out = append(out, types.OutputFile{Path: renameExt(f.Path, ".test"), Content: "test " + f.Path})
				}
				return types.TestGenResponse{TestFiles: out}, nil
			}),
		Scaffold: pipeline.CallerFunc[types.ScaffoldRequest, types.ScaffoldResponse](
			func(_ context.Context, req types.ScaffoldRequest) (types.ScaffoldResponse, error) {
				rec.mu.Lock()
				rec.scaffoldCalls++
				rec.scaffoldReq = req
				rec.mu.Unlock()
				return types.ScaffoldResponse{Files: []types.OutputFile{{Path: "Boot.config", Content: "boot"}}}, nil
			}),
		Merge: pipeline.CallerFunc[types.MergeRequest, types.MergeResponse](
			func(_ context.Context, req types.MergeRequest) (types.MergeResponse, error) {
				rec.mu.Lock()
				rec.mergeReqs[req.Duplicates[0].Path] = req
				rec.mu.Unlock()
				return types.MergeResponse{MergedFile: types.OutputFile{Path: req.Duplicates[0].Path, Content: "MERGED"}}, nil
			}),
	}
}

func byPath(files []types.OutputFile) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Path] = f.Content
	}
	return m
}

func sortedPaths(files []types.OutputFile) []string {
	p := types.Paths(files)
	sort.Strings(p)
	return p
}

func input(paths ...string) []types.SourceFile {
	out := make([]types.SourceFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, types.SourceFile{Path: p, Content: "legacy " + p})
	}
	return out
}
