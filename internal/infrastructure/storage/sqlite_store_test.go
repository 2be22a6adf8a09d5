package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VCScanner/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr(s string) *string { return &s }

func newPersonRecord(channel string, messageID int64) *domain.Record {
	return &domain.Record{
		Kind: domain.KindPerson,
		Message: domain.RawMessage{
			Source:    channel,
			MessageID: messageID,
			Date:      time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
			Text:      "Иван Петров, бизнес-ангел",
			Permalink: "https://t.me/rusven/101",
		},
		Person: &domain.PersonRecord{
			Name:           ptr("Иван Петров"),
			Position:       ptr("управляющий партнер"),
			Status:         ptr("fund"),
			Classification: domain.RoleAngel,
			Confidence:     0.85,
			SecondaryRoles: []domain.Role{domain.RoleInvestor},
		},
		Contacts: ptr("ivan@example.com"),
		Excerpt:  "Иван Петров, бизнес-ангел",
		FullText: "Иван Петров, бизнес-ангел",
	}
}

func newProjectRecord(channel string, messageID int64) *domain.Record {
	stage := domain.StageSeed
	return &domain.Record{
		Kind: domain.KindProject,
		Message: domain.RawMessage{
			Source:    channel,
			MessageID: messageID,
			Date:      time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
			Text:      "Стартап Acme привлек $2M seed раунд",
			Permalink: "https://t.me/rusven/202",
		},
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
		Excerpt:  "Стартап Acme привлек $2M seed раунд",
		FullText: "Стартап Acme привлек $2M seed раунд",
	}
}

func TestUpsertPersonIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := newPersonRecord("@rusven", 101)

	first, err := store.UpsertPerson(ctx, rec)
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := store.UpsertPerson(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM people`))
	assert.Equal(t, 1, count)
}

func TestUpsertProjectIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := newProjectRecord("@rusven", 202)

	first, err := store.UpsertProject(ctx, rec)
	require.NoError(t, err)

	second, err := store.UpsertProject(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM projects`))
	assert.Equal(t, 1, count)
}

func TestSameMessageIDInDifferentChannels(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a, err := store.UpsertPerson(ctx, newPersonRecord("@rusven", 7))
	require.NoError(t, err)
	b, err := store.UpsertPerson(ctx, newPersonRecord("@startupoftheday", 7))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPersonRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertPerson(ctx, newPersonRecord("@rusven", 101))
	require.NoError(t, err)

	records, err := store.People(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	require.NotNil(t, got.Person)
	assert.Equal(t, "Иван Петров", *got.Person.Name)
	assert.Equal(t, domain.RoleAngel, got.Person.Classification)
	assert.InDelta(t, 0.85, got.Person.Confidence, 1e-9)
	assert.Equal(t, []domain.Role{domain.RoleInvestor}, got.Person.SecondaryRoles)
	assert.Equal(t, "@rusven", got.Message.Source)
	assert.Equal(t, int64(101), got.Message.MessageID)
	require.NotNil(t, got.Contacts)
	assert.Equal(t, "ivan@example.com", *got.Contacts)
}

func TestProjectRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertProject(ctx, newProjectRecord("@rusven", 202))
	require.NoError(t, err)

	records, err := store.Projects(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	require.NotNil(t, got.Project)
	assert.Equal(t, "Acme", *got.Project.Name)
	require.NotNil(t, got.Project.Stage)
	assert.Equal(t, domain.StageSeed, *got.Project.Stage)
	assert.Equal(t, "$2M", *got.Project.FundingAmount)
	assert.Equal(t, domain.ThemeAIML, got.Project.Theme)
	assert.True(t, got.Project.Promising)
}

func TestPeopleRoleFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	angel := newPersonRecord("@rusven", 1)
	_, err := store.UpsertPerson(ctx, angel)
	require.NoError(t, err)

	mentor := newPersonRecord("@rusven", 2)
	mentor.Person.Classification = domain.RoleMentor
	_, err = store.UpsertPerson(ctx, mentor)
	require.NoError(t, err)

	records, err := store.People(ctx, domain.RoleMentor, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.RoleMentor, records[0].Person.Classification)
}

func TestProjectsStageFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seed := newProjectRecord("@rusven", 1)
	_, err := store.UpsertProject(ctx, seed)
	require.NoError(t, err)

	seriesA := newProjectRecord("@rusven", 2)
	stage := domain.StageSeriesA
	seriesA.Project.Stage = &stage
	_, err = store.UpsertProject(ctx, seriesA)
	require.NoError(t, err)

	records, err := store.Projects(ctx, domain.StageSeriesA, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.StageSeriesA, *records[0].Project.Stage)
}

func TestDeactivateHidesRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertPerson(ctx, newPersonRecord("@rusven", 1))
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(ctx, "people", id))

	records, err := store.People(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM people`))
	assert.Equal(t, 1, count)
}

func TestRunHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := domain.RunEntry{
		Source: "@rusven", Scanned: 120, PeopleFound: 3, ProjectsFound: 2,
		ParsedAt: time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC),
	}
	second := domain.RunEntry{
		Source: "@startupoftheday", Scanned: 80, PeopleFound: 1, ProjectsFound: 4,
		ParsedAt: time.Date(2026, 8, 4, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.RecordRun(ctx, first))
	require.NoError(t, store.RecordRun(ctx, second))

	entries, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "@startupoftheday", entries[0].Source)
	assert.Equal(t, 80, entries[0].Scanned)
	assert.Equal(t, "@rusven", entries[1].Source)
	assert.Equal(t, first.ParsedAt, entries[1].ParsedAt.UTC())
}

func TestStatistics(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	angel := newPersonRecord("@rusven", 1)
	_, err := store.UpsertPerson(ctx, angel)
	require.NoError(t, err)

	investor := newPersonRecord("@rusven", 2)
	investor.Person.Classification = domain.RoleInvestor
	_, err = store.UpsertPerson(ctx, investor)
	require.NoError(t, err)

	promising := newProjectRecord("@rusven", 3)
	_, err = store.UpsertProject(ctx, promising)
	require.NoError(t, err)

	weak := newProjectRecord("@rusven", 4)
	weak.Project.Promising = false
	_, err = store.UpsertProject(ctx, weak)
	require.NoError(t, err)

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPeople)
	assert.Equal(t, 1, stats.Angels)
	assert.Equal(t, 1, stats.Investors)
	assert.Zero(t, stats.Mentors)
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 1, stats.PromisingProjects)
}

func TestUpsertWrongKind(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertPerson(ctx, newProjectRecord("@rusven", 1))
	assert.Error(t, err)

	_, err = store.UpsertProject(ctx, newPersonRecord("@rusven", 2))
	assert.Error(t, err)
}
