package parser

import (
	"regexp"
	"strings"

	"VCScanner/internal/domain"
	"VCScanner/internal/patterns"
)

const (
	maxFullText    = 2000
	maxExcerpt     = 500
	maxPersonName  = 80
	maxProjectName = 60
	maxCompany     = 60
	maxPosition    = 120
	maxTeam        = 200
	maxSentence    = 200
	maxContacts    = 5
	maxInvestors   = 5
	maxSocialEach  = 2
	maxLinks       = 10
)

// Extractor builds typed records from relevant messages by applying ordered
// pattern rules, first match wins per field.
type Extractor struct {
	lib *patterns.Library
}

// NewExtractor builds an extractor over the given pattern library.
func NewExtractor(lib *patterns.Library) *Extractor {
	return &Extractor{lib: lib}
}

// Extract produces a record for a message already judged relevant. Returns
// nil for an empty body.
func (e *Extractor) Extract(msg domain.RawMessage, sig Signal) *domain.Record {
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}

	text := msg.Text
	lower := strings.ToLower(text)

	rec := &domain.Record{
		Kind:     sig.Kind(),
		Message:  msg,
		FullText: truncate(text, maxFullText),
		Excerpt:  truncate(text, maxExcerpt),
	}

	if rec.Kind == domain.KindProject {
		rec.Project = e.extractProject(text, lower)
	} else {
		rec.Person = e.extractPerson(text, lower, sig)
	}

	rec.Contacts = e.extractContacts(text)
	rec.SocialLinks = e.extractSocialLinks(text)
	rec.Links = e.extractLinks(text)
	return rec
}

func (e *Extractor) extractProject(text, lower string) *domain.ProjectRecord {
	return &domain.ProjectRecord{
		Name:          firstMatch(e.lib.ProjectName, text, maxProjectName),
		Stage:         e.extractStage(lower),
		FundingAmount: firstMatchWhole(e.lib.FundingAmount, text),
		Theme:         e.extractTheme(lower),
		Founder:       firstMatch(e.lib.Founder, text, maxPersonName),
		Team:          firstMatch(e.lib.Team, text, maxTeam),
		Investors:     e.extractInvestors(text),
		Achievements:  e.extractAchievements(text, lower),
	}
}

func (e *Extractor) extractPerson(text, lower string, sig Signal) *domain.PersonRecord {
	person := &domain.PersonRecord{
		Name:           e.extractPersonName(text),
		Position:       e.extractPosition(text, lower),
		Company:        firstMatch(e.lib.Company, text, maxCompany),
		Status:         e.extractStatus(lower),
		Classification: domain.RoleUnclassified,
	}
	if sig.HasHint {
		person.Classification = sig.RoleHint
	}
	return person
}

// firstMatch returns the first rule's first capture group, trimmed and capped.
func firstMatch(rules []*regexp.Regexp, text string, limit int) *string {
	for _, rule := range rules {
		if m := rule.FindStringSubmatch(text); m != nil {
			value := truncate(strings.TrimSpace(m[1]), limit)
			return &value
		}
	}
	return nil
}

// firstMatchWhole returns the whole match of the first rule that fires; used
// for free-form values like funding amounts where the currency marker belongs
// to the value.
func firstMatchWhole(rules []*regexp.Regexp, text string) *string {
	for _, rule := range rules {
		if m := rule.FindString(text); m != "" {
			value := strings.TrimSpace(m)
			return &value
		}
	}
	return nil
}

func (e *Extractor) extractStage(lower string) *domain.Stage {
	for _, sk := range e.lib.Stages {
		for _, kw := range sk.Keywords {
			if strings.Contains(lower, kw) {
				stage := sk.Stage
				return &stage
			}
		}
	}
	return nil
}

func (e *Extractor) extractTheme(lower string) domain.Theme {
	for _, tk := range e.lib.Themes {
		for _, kw := range tk.Keywords {
			if strings.Contains(lower, kw) {
				return tk.Theme
			}
		}
	}
	return domain.ThemeOther
}

func (e *Extractor) extractInvestors(text string) *string {
	var investors []string
	for _, rule := range e.lib.Investors {
		for _, m := range rule.FindAllStringSubmatch(text, -1) {
			investors = append(investors, strings.TrimSpace(m[1]))
		}
	}
	if len(investors) == 0 {
		return nil
	}
	if len(investors) > maxInvestors {
		investors = investors[:maxInvestors]
	}
	joined := strings.Join(investors, ", ")
	return &joined
}

func (e *Extractor) extractAchievements(text, lower string) *string {
	hit := false
	for _, kw := range e.lib.AchievementHints {
		if strings.Contains(lower, kw) {
			hit = true
			break
		}
	}
	if !hit {
		return nil
	}

	for _, sentence := range e.lib.SentenceSplit.Split(text, -1) {
		sl := strings.ToLower(sentence)
		for _, kw := range e.lib.AchievementHints {
			if strings.Contains(sl, kw) {
				value := truncate(strings.TrimSpace(sentence), maxSentence)
				return &value
			}
		}
	}
	return nil
}

func (e *Extractor) extractPersonName(text string) *string {
	for _, rule := range e.lib.PersonName {
		if m := rule.FindString(text); m != "" {
			value := truncate(m, maxPersonName)
			return &value
		}
	}
	return nil
}

// extractPosition finds a known position keyword and returns it with up to 25
// characters of surrounding context on each side.
func (e *Extractor) extractPosition(text, lower string) *string {
	runes := []rune(text)
	lowerRunes := []rune(lower)
	for _, pos := range e.lib.Positions {
		idx := runeIndex(lowerRunes, []rune(pos))
		if idx < 0 {
			continue
		}
		start := idx - 25
		if start < 0 {
			start = 0
		}
		end := idx + len([]rune(pos)) + 25
		if end > len(runes) {
			end = len(runes)
		}
		value := truncate(strings.TrimSpace(string(runes[start:end])), maxPosition)
		return &value
	}
	return nil
}

func (e *Extractor) extractStatus(lower string) *string {
	status := ""
	switch {
	case strings.Contains(lower, "основател") || strings.Contains(lower, "founder") || strings.Contains(lower, "соосновател"):
		status = "founder"
	case strings.Contains(lower, "стартап") || strings.Contains(lower, "startup"):
		status = "startup"
	case strings.Contains(lower, "фонд") || strings.Contains(lower, "fund"):
		status = "fund"
	default:
		return nil
	}
	return &status
}

func (e *Extractor) extractContacts(text string) *string {
	var contacts []string
	contacts = append(contacts, e.lib.Email.FindAllString(text, -1)...)
	contacts = append(contacts, e.lib.Phone.FindAllString(text, -1)...)
	contacts = append(contacts, e.lib.Handle.FindAllString(text, -1)...)
	if len(contacts) == 0 {
		return nil
	}
	if len(contacts) > maxContacts {
		contacts = contacts[:maxContacts]
	}
	joined := strings.Join(contacts, ", ")
	return &joined
}

func (e *Extractor) extractSocialLinks(text string) *string {
	var links []string
	for _, sp := range e.lib.Social {
		matches := sp.Expr.FindAllString(text, -1)
		if len(matches) > maxSocialEach {
			matches = matches[:maxSocialEach]
		}
		for _, m := range matches {
			links = append(links, sp.Platform+":"+m)
		}
	}
	if len(links) == 0 {
		return nil
	}
	joined := strings.Join(links, ", ")
	return &joined
}

func (e *Extractor) extractLinks(text string) *string {
	links := e.lib.URL.FindAllString(text, -1)
	if len(links) == 0 {
		return nil
	}
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	joined := strings.Join(links, ", ")
	return &joined
}

// truncate caps a string by rune count; message text is mostly Cyrillic so
// byte slicing would split characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// runeIndex returns the rune offset of needle inside haystack, or -1.
func runeIndex(haystack, needle []rune) int {
	byteIdx := strings.Index(string(haystack), string(needle))
	if byteIdx < 0 {
		return -1
	}
	return len([]rune(string(haystack)[:byteIdx]))
}
