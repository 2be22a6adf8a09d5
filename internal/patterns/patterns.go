// Package patterns holds the keyword groups and extraction rules shared by
// signal detection, field extraction, and scoring. The library is pure data:
// swapping it changes what the pipeline recognizes without touching pipeline
// logic.
package patterns

import (
	"regexp"

	"VCScanner/internal/domain"
)

// Weighted splits a keyword group into strong and medium hits for scoring.
type Weighted struct {
	Strong []string
	Medium []string
}

// StageKeywords binds a funding stage to its trigger keywords. Order in the
// library is the match priority.
type StageKeywords struct {
	Stage    domain.Stage
	Keywords []string
}

// ThemeKeywords binds a thematic category to its trigger keywords.
type ThemeKeywords struct {
	Theme    domain.Theme
	Keywords []string
}

// SocialPattern extracts links for one known platform.
type SocialPattern struct {
	Platform string
	Expr     *regexp.Regexp
}

// Library is the full rule set consumed by the pipeline.
type Library struct {
	// Signal detection.
	ProjectSignals []string
	RoleHints      map[domain.Role][]string

	// Scoring.
	RoleScoring    map[domain.Role]Weighted
	ProjectScoring Weighted
	PriorityThemes []domain.Theme

	// Field extraction; within each rule list the first match wins.
	ProjectName      []*regexp.Regexp
	FundingAmount    []*regexp.Regexp
	Founder          []*regexp.Regexp
	Team             []*regexp.Regexp
	Investors        []*regexp.Regexp
	AchievementHints []string
	SentenceSplit    *regexp.Regexp
	PersonName       []*regexp.Regexp
	Positions        []string
	Company          []*regexp.Regexp
	Stages           []StageKeywords
	Themes           []ThemeKeywords

	// Contact and link extraction.
	Email  *regexp.Regexp
	Phone  *regexp.Regexp
	Handle *regexp.Regexp
	Social []SocialPattern
	URL    *regexp.Regexp
}

// Default returns the built-in venture-market rule set covering Russian and
// English channel phrasing.
func Default() *Library {
	return &Library{
		ProjectSignals: []string{
			"стартап", "startup", "раунд", "round", "seed", "pre-seed", "series a",
			"series b", "series c", "raise", "funding", "valuation", "оценка",
			"финансирование", "инвестиции", "привлек", "поднял", "закрыл раунд",
			"венчурный раунд", "раунд a", "раунд b", "раунд c",
		},
		RoleHints: map[domain.Role][]string{
			domain.RoleMentor: {
				"ментор", "mentor", "advisor", "adviser", "трекер", "tracker",
				"эксперт", "coach", "консультант", "наставник",
			},
			domain.RoleInvestor: {
				"инвестор", "investor", "vc", "венчурный", "фонд", "fund",
				"gp", "lp", "венчурный партнер", "partner vc", "managing partner",
				"venture capital", "investment director", "директор по инвестициям",
			},
			domain.RoleAngel: {
				"бизнес-ангел", "бизнес ангел", "angel investor", "business angel",
				"private investor", "частный инвестор", "ангельский инвестор",
			},
			domain.RoleFounder: {
				"founder", "cofounder", "co-founder", "основатель", "сооснователь",
				"ceo", "cpo", "cto", "coo", "founding team",
			},
			domain.RoleOperator: {
				"product manager", "продакт", "маркетолог", "growth", "bizdev",
				"sales", "developer", "engineer", "designer", "операционный директор",
				"руководитель направления", "lead", "head of", "team lead",
			},
		},
		RoleScoring: map[domain.Role]Weighted{
			domain.RoleMentor: {
				Strong: []string{"ментор", "mentor", "advisor", "adviser", "трекер", "tracker", "наставник", "coach"},
				Medium: []string{"эксперт", "консультант", "помогаю", "советую", "подскажу"},
			},
			domain.RoleInvestor: {
				Strong: []string{"инвестор", "investor", "fund", "фонд", "vc", "венчурный партнер", "managing partner"},
				Medium: []string{"портфель", "portfolio", "capital", "capital firm", "vc fund", "lead investor"},
			},
			domain.RoleAngel: {
				Strong: []string{"бизнес-ангел", "бизнес ангел", "angel investor", "business angel", "private investor"},
				Medium: []string{"ангельский", "ранние инвестиции", "early stage investor"},
			},
			domain.RoleFounder: {
				Strong: []string{"founder", "cofounder", "co-founder", "основатель", "сооснователь", "ceo", "cpo", "cto", "coo"},
				Medium: []string{"team", "founding", "startup team", "building", "строю"},
			},
			domain.RoleOperator: {
				Strong: []string{"product manager", "продакт", "маркетолог", "growth", "sales", "bizdev", "business development", "developer", "engineer", "designer", "операционный директор"},
				Medium: []string{"руковожу", "запускаю", "делаю продукт", "go-to-market", "поддерживаю"},
			},
		},
		ProjectScoring: Weighted{
			Strong: []string{"стартап", "startup", "round", "раунд", "seed", "pre-seed", "series", "funding", "raised", "привлек"},
			Medium: []string{"product", "market", "company", "b2b", "b2c", "growth", "roadmap"},
		},
		PriorityThemes: []domain.Theme{
			domain.ThemeAIML, domain.ThemeFinTech, domain.ThemeSaaS, domain.ThemeHealthTech,
		},
		ProjectName: []*regexp.Regexp{
			regexp.MustCompile(`(?i)проект[:\s]+([А-ЯA-Z][А-Яа-яA-Za-z0-9\s\-]{2,40})`),
			regexp.MustCompile(`(?i)стартап[:\s]+([А-ЯA-Z][А-Яа-яA-Za-z0-9\s\-]{2,40})`),
			regexp.MustCompile(`(?i)company[:\s]+([A-Z][A-Za-z0-9\s\-]{2,40})`),
			regexp.MustCompile(`(?i)([A-ZА-Я][A-Za-zА-Яа-я0-9\-\s]{3,40})\s+(?:поднял|привлек|закрыл раунд)`),
		},
		FundingAmount: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\$[\d\s.,]+[kmbKMB]?)`),
			regexp.MustCompile(`(?i)(\d[\d\s.,]+)\s*(?:млн|миллион|тыс|k|m|b|млрд)`),
			regexp.MustCompile(`(?i)([\d\s.,]+)\s*(?:₽|руб|рублей|доллар|usd|eur|евро)`),
		},
		Founder: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:основател[ья]|founder|co-founder)[:\s]+([A-Za-zА-Яа-яёЁ][A-Za-zА-Яа-яёЁ\s\-]{3,60})`),
		},
		Team: []*regexp.Regexp{
			regexp.MustCompile(`(?i)команда[:\s]+([A-Za-zА-Яа-яёЁ,\s\-]{5,120})`),
			regexp.MustCompile(`(?i)team[:\s]+([A-Za-zА-Яа-яёЁ,\s\-]{5,120})`),
		},
		Investors: []*regexp.Regexp{
			regexp.MustCompile(`(?i)инвестор[ы]?:\s+([A-Za-zА-Яа-яёЁ,\s\-]{3,120})`),
			regexp.MustCompile(`(?i)investor[s]?:\s+([A-Za-zА-Яа-яёЁ,\s\-]{3,120})`),
			regexp.MustCompile(`(?i)участник[и]?\s+раунд[а]?:\s+([A-Za-zА-Яа-яёЁ,\s\-]{3,120})`),
		},
		AchievementHints: []string{"достиг", "выручка", "mrr", "arr", "клиентов", "юзер", "рост"},
		SentenceSplit:    regexp.MustCompile(`[.!?]\s+`),
		PersonName: []*regexp.Regexp{
			regexp.MustCompile(`([А-Я][а-яё]+\s+[А-Я][а-яё]+)`),
			regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+)`),
		},
		Positions: []string{
			"ceo", "cpo", "cto", "coo", "founder", "co-founder", "partner",
			"investment director", "managing partner", "analyst", "associate",
			"principal", "venture partner", "product manager", "маркетолог",
			"руководитель", "директор", "менеджер", "growth", "bizdev", "sales",
		},
		Company: []*regexp.Regexp{
			regexp.MustCompile(`в\s+([A-ZА-Я][A-Za-zА-Яа-я0-9\-\s]{2,40})`),
			regexp.MustCompile(`company[:\s]+([A-Z][A-Za-z0-9\-\s]{2,40})`),
		},
		Stages: []StageKeywords{
			{domain.StagePreSeed, []string{"pre-seed", "pre seed", "пре-сид", "пресид", "preseed"}},
			{domain.StageSeed, []string{"seed", "сид", "раунд seed"}},
			{domain.StageSeriesA, []string{"series a", "раунд a", "серия a"}},
			{domain.StageSeriesB, []string{"series b", "раунд b", "серия b"}},
			{domain.StageSeriesC, []string{"series c", "раунд c", "серия c"}},
			{domain.StageAngel, []string{"angel", "ангельский", "ангельский раунд"}},
			{domain.StageBridge, []string{"bridge", "мостовой", "bridge round"}},
		},
		Themes: []ThemeKeywords{
			{domain.ThemeFinTech, []string{"fintech", "финтех", "платеж", "оплата"}},
			{domain.ThemeEdTech, []string{"edtech", "образование", "ed tech"}},
			{domain.ThemeHealthTech, []string{"healthtech", "здоров", "health"}},
			{domain.ThemeAIML, []string{"ai", "искусственный интеллект", "machine learning", "ml"}},
			{domain.ThemeSaaS, []string{"saas", "b2b", "subscription"}},
			{domain.ThemeEcommerce, []string{"e-commerce", "маркетплейс", "commerce", "marketplace"}},
		},
		Email:  regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		Phone:  regexp.MustCompile(`[+]?[0-9]{10,15}`),
		Handle: regexp.MustCompile(`@[a-zA-Z0-9_]+|t\.me/[a-zA-Z0-9_]+`),
		Social: []SocialPattern{
			{"linkedin", regexp.MustCompile(`(?i)linkedin\.com/[^\s]+`)},
			{"twitter", regexp.MustCompile(`(?i)(?:twitter|x)\.com/[^\s]+`)},
			{"facebook", regexp.MustCompile(`(?i)facebook\.com/[^\s]+`)},
			{"instagram", regexp.MustCompile(`(?i)instagram\.com/[^\s]+`)},
			{"vk", regexp.MustCompile(`(?i)vk\.com/[^\s]+`)},
			{"telegram", regexp.MustCompile(`(?i)t\.me/[^\s]+|telegram\.me/[^\s]+`)},
		},
		URL: regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`),
	}
}
