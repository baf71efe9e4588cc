package orchestrator

import (
	"sort"
	"sync"

	"legacyshift/internal/types"
)

// migrationBag collects library migrations reported by concurrently running
// units. Only Add is called concurrently; Distinct runs after the join.
type migrationBag struct {
	mu    sync.Mutex
	items []types.LibraryMigration
}

func (b *migrationBag) Add(ms ...types.LibraryMigration) {
	if len(ms) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, ms...)
	b.mu.Unlock()
}

// Distinct returns the set of reported migrations sorted by (Old, New), so
// the scaffolding request does not depend on unit completion order.
func (b *migrationBag) Distinct() []types.LibraryMigration {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[types.LibraryMigration]struct{}, len(b.items))
	out := make([]types.LibraryMigration, 0, len(b.items))
	for _, m := range b.items {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Old != out[j].Old {
			return out[i].Old < out[j].Old
		}
		return out[i].New < out[j].New
	})
	return out
}
