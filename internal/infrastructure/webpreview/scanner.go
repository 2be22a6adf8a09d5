// Package webpreview fetches channel messages from the public t.me/s preview
// page. It needs no credentials and serves as a fallback strategy for public
// channels.
package webpreview

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"VCScanner/internal/domain"
	"VCScanner/internal/ports"
)

const defaultBaseURL = "https://t.me/s"

// Scanner scrapes the web preview of a public channel.
type Scanner struct {
	client  *http.Client
	baseURL string
}

var _ ports.MessageSource = (*Scanner)(nil)

// NewScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewScanner(client *http.Client) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scanner{client: client, baseURL: defaultBaseURL}
}

// Fetch downloads the preview page and extracts up to limit messages, oldest
// first as the page lists them.
func (s *Scanner) Fetch(ctx context.Context, channel string, limit int) ([]domain.RawMessage, error) {
	username := strings.TrimPrefix(channel, "@")
	pageURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), username)

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", channel, err)
	}

	var messages []domain.RawMessage
	doc.Find(".tgme_widget_message").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if limit > 0 && len(messages) >= limit {
			return false
		}

		msg, ok := parseMessage(sel, channel)
		if !ok {
			return true
		}
		messages = append(messages, msg)
		return true
	})

	return messages, nil
}

func (s *Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "VCScanner/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preview returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// parseMessage extracts one message block. The data-post attribute carries
// "<channel>/<id>"; blocks without it or without text are skipped.
func parseMessage(sel *goquery.Selection, channel string) (domain.RawMessage, bool) {
	var msg domain.RawMessage

	post, ok := sel.Attr("data-post")
	if !ok {
		return msg, false
	}
	parts := strings.SplitN(post, "/", 2)
	if len(parts) != 2 {
		return msg, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return msg, false
	}

	text := strings.TrimSpace(sel.Find(".tgme_widget_message_text").First().Text())
	if text == "" {
		return msg, false
	}

	date := time.Now().UTC()
	if dt, ok := sel.Find("time").First().Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, dt); err == nil {
			date = parsed.UTC()
		}
	}

	msg = domain.RawMessage{
		Source:    channel,
		MessageID: id,
		Date:      date,
		Text:      text,
		Permalink: "https://t.me/" + post,
	}
	return msg, true
}
