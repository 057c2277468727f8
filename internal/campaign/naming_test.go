package campaign_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

func TestArtifactName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		nameTemplate string
		title        string
		pairs        []string
		want         string
	}{
		{
			name:  "filename column wins",
			title: "Invitation",
			pairs: []string{"Filename", " custom ", "FirstName", "Ann"},
			want:  "custom",
		},
		{
			name:         "name template",
			nameTemplate: "{{LastName}} invitation",
			title:        "Invitation",
			pairs:        []string{"FirstName", "Ann", "LastName", "Lee"},
			want:         "Lee invitation",
		},
		{
			name:         "unresolved name template falls back",
			nameTemplate: "{{Company}} invitation",
			title:        "Invitation",
			pairs:        []string{"FirstName", "Ann", "LastName", "Lee"},
			want:         "Invitation - Ann Lee",
		},
		{
			name:  "first name only",
			title: "Invitation",
			pairs: []string{"FirstName", "Ann"},
			want:  "Invitation - Ann",
		},
		{
			name:  "email fallback",
			title: "Invitation",
			pairs: []string{"Email", "ann@example.com"},
			want:  "Invitation - ann@example.com",
		},
		{
			name:  "no title",
			pairs: []string{"FirstName", "Ann", "LastName", "Lee"},
			want:  "Ann Lee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := recipient.FromPairs(1, tt.pairs...)
			assert.Equal(t, tt.want, campaign.ArtifactName(tt.nameTemplate, tt.title, r))
		})
	}
}
