package types

// Request and response shapes exchanged with the transformation service,
// one pair per stage.

type GroupingRequest struct {
	Files []SourceFile `json:"files"`
}

type GroupingResponse struct {
	Groups []FileGroup `json:"groups"`
}

type ContextRequest struct {
	GroupID     int          `json:"group_id"`
	Description string       `json:"description"`
	Files       []SourceFile `json:"files"`
}

type ContextResponse struct {
	Context GroupContext `json:"context"`
}

type TransformRequest struct {
	Files   []SourceFile `json:"files"`
	Context GroupContext `json:"context"`
}

type TransformResponse struct {
	Files []OutputFile `json:"files"`
}

type TestGenRequest struct {
	Files   []OutputFile `json:"files"`
	Context GroupContext `json:"context"`
}

type TestGenResponse struct {
	TestFiles []OutputFile `json:"test_files"`
}

type ScaffoldRequest struct {
	LibraryMigrations []LibraryMigration `json:"library_migrations"`
	AllOutputPaths    []string           `json:"all_output_paths"`
}

type ScaffoldResponse struct {
	Files []OutputFile `json:"files"`
}

type MergeRequest struct {
	Duplicates []OutputFile `json:"duplicates"`
}

type MergeResponse struct {
	MergedFile OutputFile `json:"merged_file"`
}

// Stage names one of the six stage contracts.
type Stage string

const (
	StageGrouping  Stage = "grouping"
	StageContext   Stage = "context"
	StageTransform Stage = "transform"
	StageTestGen   Stage = "testgen"
	StageScaffold  Stage = "scaffold"
	StageMerge     Stage = "merge"
)
