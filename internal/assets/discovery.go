package assets

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// Discover builds the module list for a new course. Ids are zero-padded
// ordinals so lexical order is course order. The first module is active,
// every other module is locked. An empty source yields an empty slice.
func Discover(ctx context.Context, src Source) ([]domain.ModuleInfo, error) {
	index, err := src.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover modules: %w", err)
	}

	modules := make([]domain.ModuleInfo, 0, len(index))
	seen := make(map[string]bool, len(index))
	for _, m := range index {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		title := m.Title
		if title == "" {
			title = m.ID
		}
		modules = append(modules, domain.ModuleInfo{ID: m.ID, Title: title})
	}

	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].ID < modules[j].ID
	})

	for i := range modules {
		if i == 0 {
			modules[i].Status = domain.ModuleActive
		} else {
			modules[i].Status = domain.ModuleLocked
		}
	}

	return modules, nil
}
