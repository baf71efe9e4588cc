package types

// SourceFile is one text file read from the uploaded legacy archive.
// Path is the full relative path inside the archive and is the file's identity.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// OutputFile has the same shape as SourceFile. Several OutputFiles may share
// a path until the reconciliation phase merges them.
type OutputFile = SourceFile

// FileIndex maps SourceFile.Path to the file. Paths are case-sensitive.
type FileIndex map[string]SourceFile

// IndexFiles builds a FileIndex. A later file with the same path wins.
func IndexFiles(files []SourceFile) FileIndex {
	idx := make(FileIndex, len(files))
	for _, f := range files {
		idx[f.Path] = f
	}
	return idx
}

// Paths returns the paths of files in order.
func Paths(files []OutputFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}
