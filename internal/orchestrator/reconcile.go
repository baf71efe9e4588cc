package orchestrator

import "legacyshift/internal/types"

// reconciler is the aggregation state: a unique path->file mapping plus one
// collision bucket per path produced more than once. It is only touched from
// the orchestrator goroutine.
type reconciler struct {
	order   []string
	unique  map[string]types.OutputFile
	buckets map[string][]types.OutputFile
}

func newReconciler() *reconciler {
	return &reconciler{
		unique:  map[string]types.OutputFile{},
		buckets: map[string][]types.OutputFile{},
	}
}

// Add folds files in encounter order. The second occurrence of a path moves
// the first one out of the unique mapping into the path's bucket.
func (r *reconciler) Add(files ...types.OutputFile) {
	for _, f := range files {
		if b, ok := r.buckets[f.Path]; ok {
			r.buckets[f.Path] = append(b, f)
			continue
		}
		if prev, ok := r.unique[f.Path]; ok {
			r.buckets[f.Path] = []types.OutputFile{prev, f}
			delete(r.unique, f.Path)
			continue
		}
		r.unique[f.Path] = f
		r.order = append(r.order, f.Path)
	}
}

// Paths lists every distinct path seen so far, colliding ones included.
func (r *reconciler) Paths() []string {
	return append([]string(nil), r.order...)
}

// Collisions returns the pending buckets in first-seen path order.
func (r *reconciler) Collisions() []collision {
	var out []collision
	for _, p := range r.order {
		if b, ok := r.buckets[p]; ok {
			out = append(out, collision{Path: p, Files: append([]types.OutputFile(nil), b...)})
		}
	}
	return out
}

// Resolve replaces the bucket of path with its merged file.
func (r *reconciler) Resolve(path string, merged types.OutputFile) {
	delete(r.buckets, path)
	r.unique[path] = merged
}

// Files returns the unique mapping's values in first-seen path order.
func (r *reconciler) Files() []types.OutputFile {
	out := make([]types.OutputFile, 0, len(r.unique))
	for _, p := range r.order {
		if f, ok := r.unique[p]; ok {
			out = append(out, f)
		}
	}
	return out
}

type collision struct {
	Path  string
	Files []types.OutputFile
}
