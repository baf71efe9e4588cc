package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"legacyshift/internal/types"
)

// FakeClient returns deterministic, minimal JSON payloads per stage for
// offline runs. It reads the stage from ctx (see WithStage) and echoes the
// request back in the stage's response shape.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, _ string, input any) (json.RawMessage, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var out any
	switch StageFrom(ctx) {
	case types.StageGrouping:
		var req types.GroupingRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		out = fakeGroups(req)
	case types.StageContext:
		var req types.ContextRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		out = types.ContextResponse{Context: types.GroupContext{
			Functionalities: []string{req.Description},
		}}
	case types.StageTransform:
		var req types.TransformRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		files := make([]types.OutputFile, 0, len(req.Files))
		for _, src := range req.Files {
			files = append(files, types.OutputFile{Path: "converted/" + src.Path, Content: src.Content})
		}
		out = types.TransformResponse{Files: files}
	case types.StageTestGen:
		var req types.TestGenRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		tests := make([]types.OutputFile, 0, len(req.Files))
		for _, f := range req.Files {
			ext := path.Ext(f.Path)
			tests = append(tests, types.OutputFile{
				Path:    strings.TrimSuffix(f.Path, ext) + ".test" + ext,
				Content: fmt.Sprintf("// tests for %s\n", f.Path),
			})
		}
		out = types.TestGenResponse{TestFiles: tests}
	case types.StageScaffold:
		var req types.ScaffoldRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		var sb strings.Builder
		sb.WriteString("# Converted project\n\n")
		for _, lib := range req.LibraryMigrations {
			fmt.Fprintf(&sb, "- %s -> %s\n", lib.Old, lib.New)
		}
		out = types.ScaffoldResponse{Files: []types.OutputFile{{Path: "README.md", Content: sb.String()}}}
	case types.StageMerge:
		var req types.MergeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		if len(req.Duplicates) == 0 {
			return nil, ErrEmptyResponse
		}
		out = types.MergeResponse{MergedFile: req.Duplicates[0]}
	default:
		out = map[string]any{}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// fakeGroups puts files sharing a directory into one group.
func fakeGroups(req types.GroupingRequest) types.GroupingResponse {
	byDir := map[string]int{}
	var groups []types.FileGroup
	for _, f := range req.Files {
		dir := path.Dir(f.Path)
		idx, ok := byDir[dir]
		if !ok {
			idx = len(groups)
			byDir[dir] = idx
			groups = append(groups, types.FileGroup{ID: idx + 1, Description: "files under " + dir})
		}
		groups[idx].MemberPaths = append(groups[idx].MemberPaths, f.Path)
	}
	return types.GroupingResponse{Groups: groups}
}
