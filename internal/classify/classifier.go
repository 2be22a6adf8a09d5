// Package classify assigns roles, confidence, and project priority to
// extracted records using weighted keyword presence.
package classify

import (
	"strings"

	"VCScanner/internal/domain"
	"VCScanner/internal/patterns"
)

const (
	strongWeight     = 2.5
	mediumWeight     = 1.0
	hintWeight       = 0.7
	confidenceScale  = 5.0
	relevanceScale   = 10.0
	promiseThreshold = 5.0

	secondaryRatio = 0.6
	secondaryFloor = 1.5
)

// Recommendation tiers on the total project score. Thresholds are load
// bearing for reporting: 8 / 5 / 3.
const (
	RecommendHot   = "Горячий лид: смотрите срочно, есть потенциал закрыть раунд."
	RecommendAdd   = "Интересно: добавить в воронку, обсудить первые шаги."
	RecommendWatch = "На наблюдении: следить за обновлениями, уточнить метрики."
	RecommendSkip  = "Слабая релевантность: можно отложить."
)

var stageBonus = map[domain.Stage]float64{
	domain.StagePreSeed: 1,
	domain.StageSeed:    2,
	domain.StageSeriesA: 3,
	domain.StageSeriesB: 3.5,
	domain.StageSeriesC: 4,
}

const defaultStageBonus = 0.5

// PersonResult carries the scoring outcome for a person record.
type PersonResult struct {
	Primary    domain.Role
	Confidence float64
	Secondary  []domain.Role
	Scores     map[domain.Role]float64
}

// ProjectResult carries the scoring outcome for a project record.
type ProjectResult struct {
	Total          float64
	RelevanceScore float64
	Promising      bool
	Recommendation string
}

// Classifier scores extracted records against the pattern library.
type Classifier struct {
	lib *patterns.Library
}

// New builds a classifier over the given pattern library.
func New(lib *patterns.Library) *Classifier {
	return &Classifier{lib: lib}
}

// Enrich fills the record's classification fields in place and returns it.
func (c *Classifier) Enrich(rec *domain.Record) *domain.Record {
	if rec == nil {
		return nil
	}
	switch rec.Kind {
	case domain.KindProject:
		if rec.Project != nil {
			res := c.ClassifyProject(rec)
			rec.Project.RelevanceScore = res.RelevanceScore
			rec.Project.Promising = res.Promising
			rec.Project.Recommendation = res.Recommendation
		}
	case domain.KindPerson:
		if rec.Person != nil {
			res := c.ClassifyPerson(rec)
			rec.Person.Classification = res.Primary
			rec.Person.Confidence = res.Confidence
			rec.Person.SecondaryRoles = res.Secondary
		}
	}
	return rec
}

// ClassifyPerson scores every role against the full text plus a hint string
// and picks the maximum. The hint string is the non-empty values of
// [role hint, status, position] joined with a single space and lowercased;
// the order and separator are part of the contract because hint substrings
// feed the same keyword counters as the body.
func (c *Classifier) ClassifyPerson(rec *domain.Record) PersonResult {
	text := strings.ToLower(rec.FullText)
	hint := c.hintText(rec.Person)

	scores := make(map[domain.Role]float64, len(domain.Roles))
	for _, role := range domain.Roles {
		kw := c.lib.RoleScoring[role]
		scores[role] = scoreText(text, kw) + scoreText(hint, kw)*hintWeight
	}

	primary := domain.RoleUnclassified
	best := 0.0
	for _, role := range domain.Roles {
		if scores[role] > best {
			best = scores[role]
			primary = role
		}
	}

	result := PersonResult{
		Primary:    primary,
		Confidence: clamp01(best / confidenceScale),
		Scores:     scores,
	}
	if primary == domain.RoleUnclassified {
		return result
	}

	for _, role := range domain.Roles {
		if role == primary {
			continue
		}
		if scores[role] >= best*secondaryRatio && scores[role] > secondaryFloor {
			result.Secondary = append(result.Secondary, role)
		}
	}
	return result
}

// ClassifyProject combines keyword relevance, stage bonus, and theme bonus
// into a total, then derives the clamped score, promise flag, and
// recommendation tier.
func (c *Classifier) ClassifyProject(rec *domain.Record) ProjectResult {
	text := strings.ToLower(rec.FullText)
	relevance := scoreText(text, c.lib.ProjectScoring)

	bonus := defaultStageBonus
	if rec.Project != nil && rec.Project.Stage != nil {
		if b, ok := stageBonus[*rec.Project.Stage]; ok {
			bonus = b
		}
	}

	themeBonus := 1.0
	if rec.Project != nil {
		for _, theme := range c.lib.PriorityThemes {
			if rec.Project.Theme == theme {
				themeBonus = 1.5
				break
			}
		}
	}

	total := relevance + bonus + themeBonus
	return ProjectResult{
		Total:          total,
		RelevanceScore: clamp01(total / relevanceScale),
		Promising:      total >= promiseThreshold,
		Recommendation: recommendation(total),
	}
}

func (c *Classifier) hintText(person *domain.PersonRecord) string {
	if person == nil {
		return ""
	}
	var parts []string
	if person.Classification != "" && person.Classification != domain.RoleUnclassified {
		parts = append(parts, string(person.Classification))
	}
	if person.Status != nil && *person.Status != "" {
		parts = append(parts, *person.Status)
	}
	if person.Position != nil && *person.Position != "" {
		parts = append(parts, *person.Position)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// scoreText adds the weight of every keyword present in the text; presence,
// not occurrence count.
func scoreText(text string, kw patterns.Weighted) float64 {
	score := 0.0
	for _, w := range kw.Strong {
		if strings.Contains(text, w) {
			score += strongWeight
		}
	}
	for _, w := range kw.Medium {
		if strings.Contains(text, w) {
			score += mediumWeight
		}
	}
	return score
}

func recommendation(total float64) string {
	switch {
	case total >= 8:
		return RecommendHot
	case total >= 5:
		return RecommendAdd
	case total >= 3:
		return RecommendWatch
	default:
		return RecommendSkip
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
