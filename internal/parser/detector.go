// Package parser turns raw channel messages into typed records: the detector
// decides whether a message is worth extracting, the extractor pulls
// structured fields out of the free text.
package parser

import (
	"strings"

	"VCScanner/internal/domain"
	"VCScanner/internal/patterns"
)

// Signal is the detector verdict for one message body.
type Signal struct {
	IsProject bool
	RoleHint  domain.Role
	HasHint   bool
}

// Relevant reports whether the message should enter extraction at all.
func (s Signal) Relevant() bool {
	return s.IsProject || s.HasHint
}

// Kind maps the verdict to an output kind; project signal takes precedence
// over a person hint.
func (s Signal) Kind() domain.Kind {
	if s.IsProject {
		return domain.KindProject
	}
	return domain.KindPerson
}

// Detector decides message relevance and coarse kind from keyword hits.
type Detector struct {
	lib *patterns.Library
}

// NewDetector builds a detector over the given pattern library.
func NewDetector(lib *patterns.Library) *Detector {
	return &Detector{lib: lib}
}

// Detect inspects the message body. Project relevance is any project-signal
// substring hit; the role hint is the group with the most hits, ties resolved
// by declared role order.
func (d *Detector) Detect(body string) Signal {
	text := strings.ToLower(body)

	var sig Signal
	for _, kw := range d.lib.ProjectSignals {
		if strings.Contains(text, kw) {
			sig.IsProject = true
			break
		}
	}

	best := 0
	for _, role := range domain.Roles {
		count := 0
		for _, kw := range d.lib.RoleHints[role] {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > best {
			best = count
			sig.RoleHint = role
			sig.HasHint = true
		}
	}

	return sig
}
