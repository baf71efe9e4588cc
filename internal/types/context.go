package types

// FileGroup is a cohesive subset of the input files, produced by the
// grouping stage. MemberPaths reference SourceFile.Path values.
type FileGroup struct {
	ID          int      `json:"id"`
	Description string   `json:"description"`
	MemberPaths []string `json:"member_paths"`
}

// Endpoint is an API surface discovered while extracting a group's context.
type Endpoint struct {
	URL        string   `json:"url"`
	Method     string   `json:"method"`
	Parameters []string `json:"parameters"`
	Return     string   `json:"return"`
}

// LibraryMigration pairs a legacy library with its modern replacement.
type LibraryMigration struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// GroupContext is the analysis dossier for one FileGroup. It is read-only
// once the context extraction stage returns it.
type GroupContext struct {
	Functionalities   []string           `json:"functionalities"`
	Endpoints         []Endpoint         `json:"endpoints"`
	DataModels        []string           `json:"data_models"`
	Dependencies      []string           `json:"dependencies"`
	Integrations      []string           `json:"integrations"`
	LibraryMigrations []LibraryMigration `json:"library_migrations"`
}

// Job is the top-level unit of work.
type Job struct {
	ID         string       `json:"id"`
	Family     Family       `json:"family"`
	InputFiles []SourceFile `json:"input_files"`
}
