package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edtclient/internal/domain"
)

func TestFusionExpander(t *testing.T) {
	expander := NewFusionExpander([]domain.GroupFusion{
		{ID: "FUS_AB", Groupes: []string{"G-A", "G-B"}},
		{ID: "FUS_EMPTY", Groupes: nil},
		{ID: "", Groupes: []string{"G-X"}},
	})

	tests := []struct {
		name    string
		groupID string
		want    []string
	}{
		{name: "registered fusion expands", groupID: "FUS_AB", want: []string{"G-A", "G-B"}},
		{name: "plain group expands to itself", groupID: "G-A", want: []string{"G-A"}},
		{name: "unknown group expands to itself", groupID: "G-Z", want: []string{"G-Z"}},
		{name: "empty member list is ignored", groupID: "FUS_EMPTY", want: []string{"FUS_EMPTY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expander.Expand(tt.groupID))
		})
	}
}

func TestFusionExpanderReturnsCopies(t *testing.T) {
	expander := NewFusionExpander([]domain.GroupFusion{
		{ID: "FUS_AB", Groupes: []string{"G-A", "G-B"}},
	})
	first := expander.Expand("FUS_AB")
	first[0] = "mutated"
	assert.Equal(t, []string{"G-A", "G-B"}, expander.Expand("FUS_AB"))
}

func TestFusionLabel(t *testing.T) {
	expander := NewFusionExpander([]domain.GroupFusion{
		{ID: "FUS_AB", Groupes: []string{"G-A", "G-B"}},
	})
	assert.Equal(t, "G-A + G-B (online)", FusionLabel(expander, "FUS_AB"))
	assert.Equal(t, "G-A", FusionLabel(expander, "G-A"))
}
