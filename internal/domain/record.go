package domain

import "time"

// RawMessage is a single message fetched from a channel. Immutable once fetched.
type RawMessage struct {
	Source    string
	MessageID int64
	Date      time.Time
	Text      string
	Permalink string
}

// Kind tags a record as describing a project or a person.
type Kind string

const (
	KindProject Kind = "project"
	KindPerson  Kind = "person"
)

// Role is the fixed classification for people active in the venture ecosystem.
type Role string

const (
	RoleMentor       Role = "mentor"
	RoleInvestor     Role = "investor"
	RoleAngel        Role = "angel"
	RoleFounder      Role = "founder"
	RoleOperator     Role = "operator"
	RoleUnclassified Role = "unclassified"
)

// Roles lists the classifiable roles in their declared order. Scoring ties
// resolve to the first role reaching the maximum.
var Roles = []Role{RoleMentor, RoleInvestor, RoleAngel, RoleFounder, RoleOperator}

// RoleLabels maps roles to display labels for chat output.
var RoleLabels = map[Role]string{
	RoleMentor:       "Ментор",
	RoleInvestor:     "Инвестор",
	RoleAngel:        "Бизнес-ангел",
	RoleFounder:      "Основатель стартапа",
	RoleOperator:     "Работник стартапа",
	RoleUnclassified: "Требует ручной оценки",
}

// Stage is a funding round category.
type Stage string

const (
	StagePreSeed Stage = "pre-seed"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series a"
	StageSeriesB Stage = "series b"
	StageSeriesC Stage = "series c"
	StageAngel   Stage = "angel"
	StageBridge  Stage = "bridge"
)

// Theme is a thematic project category.
type Theme string

const (
	ThemeFinTech    Theme = "FinTech"
	ThemeEdTech     Theme = "EdTech"
	ThemeHealthTech Theme = "HealthTech"
	ThemeAIML       Theme = "AI/ML"
	ThemeSaaS       Theme = "SaaS"
	ThemeEcommerce  Theme = "E-commerce"
	ThemeOther      Theme = "other"
)

// PersonRecord holds attributes extracted for a person. Nil pointers mean the
// field was looked for and not found.
type PersonRecord struct {
	Name           *string
	Position       *string
	Company        *string
	Status         *string
	Classification Role
	Confidence     float64
	SecondaryRoles []Role
}

// ProjectRecord holds attributes extracted for a funded project.
type ProjectRecord struct {
	Name           *string
	Stage          *Stage
	FundingAmount  *string
	Theme          Theme
	Founder        *string
	Team           *string
	Investors      *string
	Achievements   *string
	RelevanceScore float64
	Promising      bool
	Recommendation string
}

// Record is the tagged result of extracting one relevant message. Exactly one
// of Person or Project is set, matching Kind.
type Record struct {
	Kind        Kind
	Message     RawMessage
	Person      *PersonRecord
	Project     *ProjectRecord
	Contacts    *string
	SocialLinks *string
	Links       *string
	Excerpt     string
	FullText    string

	// StoredID is filled by the store after an upsert.
	StoredID int64
}

// RunEntry is one append-only row of per-source scan history.
type RunEntry struct {
	Source        string
	Scanned       int
	PeopleFound   int
	ProjectsFound int
	ParsedAt      time.Time
}

// Statistics aggregates stored records at query time.
type Statistics struct {
	TotalPeople       int
	Mentors           int
	Investors         int
	Angels            int
	Founders          int
	Operators         int
	TotalProjects     int
	PromisingProjects int
}
