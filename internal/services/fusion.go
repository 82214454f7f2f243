package services

import (
	"strings"

	"edtclient/internal/domain"
)

type fusionExpander struct {
	byID map[string][]string
}

// NewFusionExpander builds an expander from the catalog's online
// fusions. Rebuild it whenever the catalog changes; it holds no state
// of its own beyond the mapping.
func NewFusionExpander(fusions []domain.GroupFusion) domain.FusionExpander {
	byID := make(map[string][]string, len(fusions))
	for _, f := range fusions {
		if f.ID == "" || len(f.Groupes) == 0 {
			continue
		}
		groups := make([]string, len(f.Groupes))
		copy(groups, f.Groupes)
		byID[f.ID] = groups
	}
	return &fusionExpander{byID: byID}
}

// Expand returns the constituent real groups of a fusion id, or the id
// itself as a single-element sequence when no fusion is registered.
func (e *fusionExpander) Expand(groupID string) []string {
	if groups, ok := e.byID[groupID]; ok {
		out := make([]string, len(groups))
		copy(out, groups)
		return out
	}
	return []string{groupID}
}

// FusionLabel formats a group id for display: fused online groups show
// as "A + B (online)", plain groups as themselves. Display identity is
// separate from conflict expansion on purpose.
func FusionLabel(expander domain.FusionExpander, groupID string) string {
	groups := expander.Expand(groupID)
	if len(groups) <= 1 {
		return groupID
	}
	return strings.Join(groups, " + ") + " (online)"
}
