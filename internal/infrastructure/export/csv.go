// Package export renders stored records as CSV for the /export command.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"VCScanner/internal/domain"
)

// PeopleCSV renders person records, one row per record.
func PeopleCSV(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"name", "position", "company", "status", "classification", "confidence",
		"secondary_roles", "contacts", "social_links", "channel", "message_id",
		"message_url", "description",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		p := rec.Person
		if p == nil {
			continue
		}
		row := []string{
			str(p.Name), str(p.Position), str(p.Company), str(p.Status),
			string(p.Classification),
			fmt.Sprintf("%.2f", p.Confidence),
			joinRoles(p.SecondaryRoles),
			str(rec.Contacts), str(rec.SocialLinks),
			rec.Message.Source,
			fmt.Sprintf("%d", rec.Message.MessageID),
			rec.Message.Permalink,
			rec.Excerpt,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write person row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ProjectsCSV renders project records, one row per record.
func ProjectsCSV(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"project_name", "stage", "funding_amount", "theme", "founder", "team",
		"investors", "achievements", "relevance_score", "is_promising",
		"recommendation", "links", "contacts", "channel", "message_id",
		"message_url", "description",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		p := rec.Project
		if p == nil {
			continue
		}
		stage := ""
		if p.Stage != nil {
			stage = string(*p.Stage)
		}
		row := []string{
			str(p.Name), stage, str(p.FundingAmount), string(p.Theme),
			str(p.Founder), str(p.Team), str(p.Investors), str(p.Achievements),
			fmt.Sprintf("%.2f", p.RelevanceScore),
			fmt.Sprintf("%t", p.Promising),
			p.Recommendation,
			str(rec.Links), str(rec.Contacts),
			rec.Message.Source,
			fmt.Sprintf("%d", rec.Message.MessageID),
			rec.Message.Permalink,
			rec.Excerpt,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write project row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinRoles(roles []domain.Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ", ")
}
