package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VCScanner/internal/domain"
	"VCScanner/internal/patterns"
)

func ptr(s string) *string { return &s }

func personRecord(text string, person *domain.PersonRecord) *domain.Record {
	if person == nil {
		person = &domain.PersonRecord{Classification: domain.RoleUnclassified}
	}
	return &domain.Record{
		Kind:     domain.KindPerson,
		Person:   person,
		FullText: text,
	}
}

func projectRecord(text string, project *domain.ProjectRecord) *domain.Record {
	if project == nil {
		project = &domain.ProjectRecord{Theme: domain.ThemeOther}
	}
	return &domain.Record{
		Kind:     domain.KindProject,
		Project:  project,
		FullText: text,
	}
}

func TestClassifyPersonPicksStrongestRole(t *testing.T) {
	c := New(patterns.Default())

	res := c.ClassifyPerson(personRecord("Я ментор и трекер, помогаю фаундерам", nil))

	assert.Equal(t, domain.RoleMentor, res.Primary)
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestClassifyPersonUnclassifiedOnZeroScore(t *testing.T) {
	c := New(patterns.Default())

	res := c.ClassifyPerson(personRecord("Обсуждаем погоду и планы на выходные", nil))

	assert.Equal(t, domain.RoleUnclassified, res.Primary)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Secondary)
}

func TestClassifyPersonTieResolvesInDeclaredOrder(t *testing.T) {
	c := New(patterns.Default())

	// One strong keyword each: mentor and investor score 2.5 apiece, the
	// first declared role keeps the maximum.
	res := c.ClassifyPerson(personRecord("ментор и инвестор", nil))

	assert.Equal(t, domain.RoleMentor, res.Primary)
}

func TestClassifyPersonSecondaryRoles(t *testing.T) {
	c := New(patterns.Default())

	// Investor and founder both reach 5.0; investor is declared first, so it
	// becomes primary and founder qualifies as secondary.
	res := c.ClassifyPerson(personRecord("основатель и ceo, а также инвестор в фонд", nil))

	assert.Equal(t, domain.RoleInvestor, res.Primary)
	assert.Contains(t, res.Secondary, domain.RoleFounder)
	assert.NotContains(t, res.Secondary, res.Primary)
}

func TestClassifyPersonHintContributesWithReducedWeight(t *testing.T) {
	c := New(patterns.Default())

	rec := personRecord("", &domain.PersonRecord{
		Classification: domain.RoleUnclassified,
		Position:       ptr("Managing Partner"),
	})
	res := c.ClassifyPerson(rec)

	// 2.5 strong keyword weight * 0.7 hint multiplier / 5 confidence scale.
	assert.Equal(t, domain.RoleInvestor, res.Primary)
	assert.InDelta(t, 0.35, res.Confidence, 1e-9)
}

func TestClassifyPersonConfidenceClamped(t *testing.T) {
	c := New(patterns.Default())

	res := c.ClassifyPerson(personRecord(
		"инвестор, фонд, vc, венчурный партнер, managing partner, портфель, portfolio", nil))

	assert.Equal(t, domain.RoleInvestor, res.Primary)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestClassifyProjectHotLead(t *testing.T) {
	c := New(patterns.Default())

	stage := domain.StageSeed
	rec := projectRecord(
		"Стартап Acme привлек $2M seed раунд, инвесторы: Fund X, Fund Y",
		&domain.ProjectRecord{Stage: &stage, Theme: domain.ThemeOther},
	)
	res := c.ClassifyProject(rec)

	// Four strong keywords (10.0) + seed bonus (2.0) + base theme (1.0).
	assert.InDelta(t, 13.0, res.Total, 1e-9)
	assert.Equal(t, 1.0, res.RelevanceScore)
	assert.True(t, res.Promising)
	assert.Equal(t, RecommendHot, res.Recommendation)
}

func TestClassifyProjectTiers(t *testing.T) {
	c := New(patterns.Default())
	seed := domain.StageSeed

	cases := []struct {
		name      string
		rec       *domain.Record
		want      string
		promising bool
	}{
		{
			name: "add tier with priority theme",
			// 2.5 keyword + 2.0 seed + 1.5 AI theme = 6.0.
			rec:       projectRecord("startup", &domain.ProjectRecord{Stage: &seed, Theme: domain.ThemeAIML}),
			want:      RecommendAdd,
			promising: true,
		},
		{
			name: "watch tier",
			// 2.0 medium keywords + 0.5 default stage + 1.0 theme = 3.5.
			rec:       projectRecord("product market", nil),
			want:      RecommendWatch,
			promising: false,
		},
		{
			name: "skip tier",
			// 0.5 default stage + 1.0 theme = 1.5.
			rec:       projectRecord("ничего интересного", nil),
			want:      RecommendSkip,
			promising: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := c.ClassifyProject(tc.rec)
			assert.Equal(t, tc.want, res.Recommendation)
			assert.Equal(t, tc.promising, res.Promising)
			assert.Equal(t, res.Total >= 5.0, res.Promising)
		})
	}
}

func TestClassifyProjectScoresPresenceNotOccurrences(t *testing.T) {
	c := New(patterns.Default())

	once := c.ClassifyProject(projectRecord("seed", nil))
	thrice := c.ClassifyProject(projectRecord("seed seed seed", nil))

	assert.Equal(t, once.Total, thrice.Total)
}

func TestEnrichFillsPersonInPlace(t *testing.T) {
	c := New(patterns.Default())

	rec := personRecord("бизнес-ангел, частный инвестор", &domain.PersonRecord{
		Classification: domain.RoleAngel,
	})
	got := c.Enrich(rec)

	require.Same(t, rec, got)
	assert.Equal(t, domain.RoleAngel, rec.Person.Classification)
	assert.Greater(t, rec.Person.Confidence, 0.0)
}

func TestEnrichFillsProjectInPlace(t *testing.T) {
	c := New(patterns.Default())

	rec := projectRecord("стартап привлек seed раунд", nil)
	c.Enrich(rec)

	assert.True(t, rec.Project.Promising)
	assert.NotEmpty(t, rec.Project.Recommendation)
	assert.Greater(t, rec.Project.RelevanceScore, 0.0)
}

func TestEnrichNilRecord(t *testing.T) {
	c := New(patterns.Default())
	assert.Nil(t, c.Enrich(nil))
}
