package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VCScanner/internal/domain"
)

func ptr(s string) *string { return &s }

func TestPeopleCSV(t *testing.T) {
	records := []domain.Record{
		{
			Kind: domain.KindPerson,
			Person: &domain.PersonRecord{
				Name:           ptr("Иван Петров"),
				Classification: domain.RoleAngel,
				Confidence:     0.85,
				SecondaryRoles: []domain.Role{domain.RoleInvestor, domain.RoleMentor},
			},
			Contacts: ptr("ivan@example.com"),
			Message:  domain.RawMessage{Source: "@rusven", MessageID: 101, Permalink: "https://t.me/rusven/101"},
			Excerpt:  "Иван Петров, бизнес-ангел",
		},
		// Rows of the wrong kind are skipped, not rendered blank.
		{Kind: domain.KindProject, Project: &domain.ProjectRecord{}},
	}

	data, err := PeopleCSV(records)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "name", rows[0][0])
	assert.Equal(t, "Иван Петров", rows[1][0])
	assert.Equal(t, "angel", rows[1][4])
	assert.Equal(t, "0.85", rows[1][5])
	assert.Equal(t, "investor, mentor", rows[1][6])
	assert.Equal(t, "@rusven", rows[1][9])
	assert.Equal(t, "101", rows[1][10])
}

func TestProjectsCSV(t *testing.T) {
	stage := domain.StageSeed
	records := []domain.Record{
		{
			Kind: domain.KindProject,
			Project: &domain.ProjectRecord{
				Name:           ptr("Acme"),
				Stage:          &stage,
				FundingAmount:  ptr("$2M"),
				Theme:          domain.ThemeAIML,
				Investors:      ptr("Fund X, Fund Y"),
				RelevanceScore: 1.0,
				Promising:      true,
				Recommendation: "hot",
			},
			Message: domain.RawMessage{Source: "@rusven", MessageID: 202},
		},
	}

	data, err := ProjectsCSV(records)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "project_name", rows[0][0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "seed", rows[1][1])
	assert.Equal(t, "$2M", rows[1][2])
	assert.Equal(t, "AI/ML", rows[1][3])
	assert.Equal(t, "1.00", rows[1][8])
	assert.Equal(t, "true", rows[1][9])
}

func TestEmptyExportStillHasHeader(t *testing.T) {
	data, err := PeopleCSV(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
