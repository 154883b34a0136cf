// Package analysis extracts the three interpretation sections from engine output
// and renders them back into a single message body.
package analysis

import (
	"regexp"
	"strings"

	"github.com/Rrens/health-insights/internal/domain"
)

type section struct {
	header  string
	pattern *regexp.Regexp
	assign  func(*domain.AnalysisSections, string)
}

var sections = []section{
	newSection(domain.HeaderWhatIsGood, func(s *domain.AnalysisSections, v string) { s.WhatIsGood = v }),
	newSection(domain.HeaderBeAlert, func(s *domain.AnalysisSections, v string) { s.BeAlert = v }),
	newSection(domain.HeaderNeedToCheck, func(s *domain.AnalysisSections, v string) { s.NeedToCheck = v }),
}

// A section body runs from its bold header to the next line opening with a
// bold marker, or to the end of the text.
func newSection(header string, assign func(*domain.AnalysisSections, string)) section {
	return section{
		header:  header,
		pattern: regexp.MustCompile(`(?is)\*\*` + regexp.QuoteMeta(header) + `\*\*(.*?)(?:\n\s*\*\*|$)`),
		assign:  assign,
	}
}

// ParseResult is the outcome of extracting sections from one response
type ParseResult struct {
	Sections domain.AnalysisSections
	// Missing lists headers absent from the response, in canonical order.
	Missing []string
}

// Complete reports whether every header was found
func (r ParseResult) Complete() bool {
	return len(r.Missing) == 0
}

// Parse extracts the sections from text. A missing header yields an empty
// section and is recorded in Missing; it is never an error.
func Parse(text string) ParseResult {
	var result ParseResult
	for _, s := range sections {
		m := s.pattern.FindStringSubmatch(text)
		if m == nil {
			result.Missing = append(result.Missing, s.header)
			continue
		}
		s.assign(&result.Sections, strings.TrimSpace(m[1]))
	}
	return result
}
