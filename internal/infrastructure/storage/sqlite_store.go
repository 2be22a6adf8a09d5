package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"VCScanner/internal/domain"
	"VCScanner/internal/ports"
)

const timeLayout = "2006-01-02 15:04:05"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_name TEXT,
		position TEXT,
		company TEXT,
		status TEXT,
		classification TEXT,
		classification_confidence REAL,
		secondary_roles TEXT,
		contacts TEXT,
		social_links TEXT,
		description TEXT,
		full_text TEXT,
		channel TEXT NOT NULL,
		message_id INTEGER NOT NULL,
		message_url TEXT,
		date_found TEXT,
		date_added TEXT DEFAULT CURRENT_TIMESTAMP,
		is_active INTEGER DEFAULT 1,
		UNIQUE(channel, message_id)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT,
		investment_stage TEXT,
		funding_amount TEXT,
		theme TEXT,
		founder TEXT,
		team TEXT,
		project_investors TEXT,
		achievements TEXT,
		relevance_score REAL,
		is_promising INTEGER,
		recommendation TEXT,
		links TEXT,
		contacts TEXT,
		description TEXT,
		full_text TEXT,
		channel TEXT NOT NULL,
		message_id INTEGER NOT NULL,
		message_url TEXT,
		date_found TEXT,
		date_added TEXT DEFAULT CURRENT_TIMESTAMP,
		is_active INTEGER DEFAULT 1,
		UNIQUE(channel, message_id)
	)`,
	`CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		channel TEXT NOT NULL,
		messages_parsed INTEGER,
		people_found INTEGER,
		projects_found INTEGER,
		date_parsed TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_people_classification ON people(classification)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_stage ON projects(investment_stage)`,
}

// SQLiteStore persists people, projects, and run history in a single SQLite
// file. Upserts are idempotent on (channel, message_id).
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ ports.RecordStore = (*SQLiteStore)(nil)

// Open connects to the SQLite database and creates the schema.
func Open(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer; serializing connections keeps the
	// insert-or-return-existing upsert atomic under concurrent ingestion.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	logger.Info("sqlite store ready", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type personRow struct {
	ID             int64    `db:"id"`
	PersonName     *string  `db:"person_name"`
	Position       *string  `db:"position"`
	Company        *string  `db:"company"`
	Status         *string  `db:"status"`
	Classification string   `db:"classification"`
	Confidence     float64  `db:"classification_confidence"`
	SecondaryRoles *string  `db:"secondary_roles"`
	Contacts       *string  `db:"contacts"`
	SocialLinks    *string  `db:"social_links"`
	Description    string   `db:"description"`
	FullText       string   `db:"full_text"`
	Channel        string   `db:"channel"`
	MessageID      int64    `db:"message_id"`
	MessageURL     *string  `db:"message_url"`
	DateFound      *string  `db:"date_found"`
}

type projectRow struct {
	ID             int64    `db:"id"`
	ProjectName    *string  `db:"project_name"`
	Stage          *string  `db:"investment_stage"`
	FundingAmount  *string  `db:"funding_amount"`
	Theme          string   `db:"theme"`
	Founder        *string  `db:"founder"`
	Team           *string  `db:"team"`
	Investors      *string  `db:"project_investors"`
	Achievements   *string  `db:"achievements"`
	RelevanceScore float64  `db:"relevance_score"`
	IsPromising    int      `db:"is_promising"`
	Recommendation string   `db:"recommendation"`
	Links          *string  `db:"links"`
	Contacts       *string  `db:"contacts"`
	Description    string   `db:"description"`
	FullText       string   `db:"full_text"`
	Channel        string   `db:"channel"`
	MessageID      int64    `db:"message_id"`
	MessageURL     *string  `db:"message_url"`
	DateFound      *string  `db:"date_found"`
}

// UpsertPerson inserts the person record or returns the existing row id for
// the same (source, message id) without writing.
func (s *SQLiteStore) UpsertPerson(ctx context.Context, rec *domain.Record) (int64, error) {
	if rec == nil || rec.Person == nil {
		return 0, fmt.Errorf("not a person record")
	}
	p := rec.Person

	var secondary *string
	if len(p.SecondaryRoles) > 0 {
		joined := joinRoles(p.SecondaryRoles)
		secondary = &joined
	}

	query := `INSERT INTO people (
			person_name, position, company, status, classification,
			classification_confidence, secondary_roles, contacts, social_links,
			description, full_text, channel, message_id, message_url, date_found
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel, message_id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		p.Name, p.Position, p.Company, p.Status, string(p.Classification),
		p.Confidence, secondary, rec.Contacts, rec.SocialLinks,
		rec.Excerpt, rec.FullText, rec.Message.Source, rec.Message.MessageID,
		permalink(rec), rec.Message.Date.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}

	return s.resolveID(ctx, res, "people", rec.Message)
}

// UpsertProject inserts the project record or returns the existing row id.
func (s *SQLiteStore) UpsertProject(ctx context.Context, rec *domain.Record) (int64, error) {
	if rec == nil || rec.Project == nil {
		return 0, fmt.Errorf("not a project record")
	}
	p := rec.Project

	var stage *string
	if p.Stage != nil {
		v := string(*p.Stage)
		stage = &v
	}
	promising := 0
	if p.Promising {
		promising = 1
	}

	query := `INSERT INTO projects (
			project_name, investment_stage, funding_amount, theme, founder,
			team, project_investors, achievements, relevance_score, is_promising,
			recommendation, links, contacts, description, full_text,
			channel, message_id, message_url, date_found
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel, message_id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		p.Name, stage, p.FundingAmount, string(p.Theme), p.Founder,
		p.Team, p.Investors, p.Achievements, p.RelevanceScore, promising,
		p.Recommendation, rec.Links, rec.Contacts, rec.Excerpt, rec.FullText,
		rec.Message.Source, rec.Message.MessageID,
		permalink(rec), rec.Message.Date.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}

	return s.resolveID(ctx, res, "projects", rec.Message)
}

// resolveID returns the inserted row id or, on conflict, the existing one.
func (s *SQLiteStore) resolveID(ctx context.Context, res sql.Result, table string, msg domain.RawMessage) (int64, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		return id, nil
	}

	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s WHERE channel = ? AND message_id = ?`, table)
	if err := s.db.GetContext(ctx, &id, query, msg.Source, msg.MessageID); err != nil {
		return 0, fmt.Errorf("lookup existing row: %w", err)
	}
	return id, nil
}

// People returns active person records, newest first, optionally filtered by
// role.
func (s *SQLiteStore) People(ctx context.Context, role domain.Role, limit int) ([]domain.Record, error) {
	builder := sq.Select(
		"id", "person_name", "position", "company", "status", "classification",
		"classification_confidence", "secondary_roles", "contacts", "social_links",
		"description", "full_text", "channel", "message_id", "message_url", "date_found",
	).
		From("people").
		Where(sq.Eq{"is_active": 1}).
		OrderBy("id DESC").
		Limit(uint64(limit))
	if role != "" {
		builder = builder.Where(sq.Eq{"classification": string(role)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build people query: %w", err)
	}

	var rows []personRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Projects returns active project records, newest first, optionally filtered
// by funding stage.
func (s *SQLiteStore) Projects(ctx context.Context, stage domain.Stage, limit int) ([]domain.Record, error) {
	builder := sq.Select(
		"id", "project_name", "investment_stage", "funding_amount", "theme",
		"founder", "team", "project_investors", "achievements", "relevance_score",
		"is_promising", "recommendation", "links", "contacts", "description",
		"full_text", "channel", "message_id", "message_url", "date_found",
	).
		From("projects").
		Where(sq.Eq{"is_active": 1}).
		OrderBy("id DESC").
		Limit(uint64(limit))
	if stage != "" {
		builder = builder.Where(sq.Eq{"investment_stage": string(stage)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build projects query: %w", err)
	}

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Deactivate soft-deletes a row; nothing is ever physically removed.
func (s *SQLiteStore) Deactivate(ctx context.Context, table string, id int64) error {
	if table != "people" && table != "projects" {
		return fmt.Errorf("unknown table %s", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET is_active = 0 WHERE id = ?`, table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deactivate %s %d: %w", table, id, err)
	}
	return nil
}

// RecordRun appends one history row; history is never mutated.
func (s *SQLiteStore) RecordRun(ctx context.Context, entry domain.RunEntry) error {
	query := `INSERT INTO run_history (channel, messages_parsed, people_found, projects_found, date_parsed)
		VALUES (?, ?, ?, ?, ?)`
	parsedAt := entry.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.Source, entry.Scanned, entry.PeopleFound, entry.ProjectsFound,
		parsedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run history: %w", err)
	}
	return nil
}

// RecentRuns returns the latest history rows, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	type runRow struct {
		Channel       string `db:"channel"`
		Scanned       int    `db:"messages_parsed"`
		PeopleFound   int    `db:"people_found"`
		ProjectsFound int    `db:"projects_found"`
		DateParsed    string `db:"date_parsed"`
	}

	var rows []runRow
	query := `SELECT channel, messages_parsed, people_found, projects_found, date_parsed
		FROM run_history ORDER BY id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}

	entries := make([]domain.RunEntry, 0, len(rows))
	for _, row := range rows {
		parsedAt, _ := time.Parse(timeLayout, row.DateParsed)
		entries = append(entries, domain.RunEntry{
			Source:        row.Channel,
			Scanned:       row.Scanned,
			PeopleFound:   row.PeopleFound,
			ProjectsFound: row.ProjectsFound,
			ParsedAt:      parsedAt,
		})
	}
	return entries, nil
}

// Statistics aggregates active rows at query time; nothing is cached.
func (s *SQLiteStore) Statistics(ctx context.Context) (domain.Statistics, error) {
	var stats domain.Statistics

	type roleCount struct {
		Classification string `db:"classification"`
		Count          int    `db:"cnt"`
	}
	var counts []roleCount
	query := `SELECT classification, COUNT(*) AS cnt FROM people WHERE is_active = 1 GROUP BY classification`
	if err := s.db.SelectContext(ctx, &counts, query); err != nil {
		return stats, fmt.Errorf("count people: %w", err)
	}
	for _, rc := range counts {
		stats.TotalPeople += rc.Count
		switch domain.Role(rc.Classification) {
		case domain.RoleMentor:
			stats.Mentors = rc.Count
		case domain.RoleInvestor:
			stats.Investors = rc.Count
		case domain.RoleAngel:
			stats.Angels = rc.Count
		case domain.RoleFounder:
			stats.Founders = rc.Count
		case domain.RoleOperator:
			stats.Operators = rc.Count
		}
	}

	if err := s.db.GetContext(ctx, &stats.TotalProjects,
		`SELECT COUNT(*) FROM projects WHERE is_active = 1`); err != nil {
		return stats, fmt.Errorf("count projects: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.PromisingProjects,
		`SELECT COUNT(*) FROM projects WHERE is_promising = 1 AND is_active = 1`); err != nil {
		return stats, fmt.Errorf("count promising projects: %w", err)
	}
	return stats, nil
}

func (r personRow) toRecord() domain.Record {
	person := &domain.PersonRecord{
		Name:           r.PersonName,
		Position:       r.Position,
		Company:        r.Company,
		Status:         r.Status,
		Classification: domain.Role(r.Classification),
		Confidence:     r.Confidence,
	}
	if r.SecondaryRoles != nil {
		person.SecondaryRoles = splitRoles(*r.SecondaryRoles)
	}
	return domain.Record{
		Kind:        domain.KindPerson,
		Person:      person,
		Contacts:    r.Contacts,
		SocialLinks: r.SocialLinks,
		Excerpt:     r.Description,
		FullText:    r.FullText,
		StoredID:    r.ID,
		Message: domain.RawMessage{
			Source:    r.Channel,
			MessageID: r.MessageID,
			Permalink: deref(r.MessageURL),
			Date:      parseTime(r.DateFound),
		},
	}
}

func (r projectRow) toRecord() domain.Record {
	project := &domain.ProjectRecord{
		Name:           r.ProjectName,
		FundingAmount:  r.FundingAmount,
		Theme:          domain.Theme(r.Theme),
		Founder:        r.Founder,
		Team:           r.Team,
		Investors:      r.Investors,
		Achievements:   r.Achievements,
		RelevanceScore: r.RelevanceScore,
		Promising:      r.IsPromising != 0,
		Recommendation: r.Recommendation,
	}
	if r.Stage != nil {
		stage := domain.Stage(*r.Stage)
		project.Stage = &stage
	}
	return domain.Record{
		Kind:     domain.KindProject,
		Project:  project,
		Links:    r.Links,
		Contacts: r.Contacts,
		Excerpt:  r.Description,
		FullText: r.FullText,
		StoredID: r.ID,
		Message: domain.RawMessage{
			Source:    r.Channel,
			MessageID: r.MessageID,
			Permalink: deref(r.MessageURL),
			Date:      parseTime(r.DateFound),
		},
	}
}

func joinRoles(roles []domain.Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ", ")
}

func splitRoles(joined string) []domain.Role {
	var roles []domain.Role
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, domain.Role(part))
		}
	}
	return roles
}

func permalink(rec *domain.Record) *string {
	if rec.Message.Permalink == "" {
		return nil
	}
	return &rec.Message.Permalink
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseTime(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, *s)
	return t
}
