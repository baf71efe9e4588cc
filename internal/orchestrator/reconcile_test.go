package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacyshift/internal/types"
)

func TestReconciler_BucketsKeepEncounterOrder(t *testing.T) {
	r := newReconciler()
	r.Add(
		types.OutputFile{Path: "a", Content: "1"},
		types.OutputFile{Path: "b", Content: "1"},
		types.OutputFile{Path: "a", Content: "2"},
	)
	r.Add(types.OutputFile{Path: "a", Content: "3"}, types.OutputFile{Path: "c", Content: "1"})

	assert.Equal(t, []string{"a", "b", "c"}, r.Paths())

	cols := r.Collisions()
	require.Len(t, cols, 1)
	assert.Equal(t, "a", cols[0].Path)
	assert.Equal(t, []string{"1", "2", "3"}, []string{cols[0].Files[0].Content, cols[0].Files[1].Content, cols[0].Files[2].Content})

	// Unresolved collisions are not emitted.
	assert.Equal(t, []string{"b", "c"}, types.Paths(r.Files()))

	r.Resolve("a", types.OutputFile{Path: "a", Content: "merged"})
	assert.Empty(t, r.Collisions())
	assert.Equal(t, []types.OutputFile{
		{Path: "a", Content: "merged"},
		{Path: "b", Content: "1"},
		{Path: "c", Content: "1"},
	}, r.Files())
}

func TestMigrationBag_Distinct(t *testing.T) {
	var b migrationBag
	b.Add(types.LibraryMigration{Old: "z", New: "1"}, types.LibraryMigration{Old: "a", New: "2"})
	b.Add(types.LibraryMigration{Old: "z", New: "1"})
	b.Add()
	assert.Equal(t, []types.LibraryMigration{{Old: "a", New: "2"}, {Old: "z", New: "1"}}, b.Distinct())
}
