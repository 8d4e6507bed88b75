package core

import (
	"sort"
	"strings"
)

// Sections holds the labeled parts extracted from a completion. A nil field
// means the matching header was not found in the text.
type Sections struct {
	Understanding *string `json:"understanding,omitempty"`
	Concepts      *string `json:"concepts,omitempty"`
	Solution      *string `json:"solution,omitempty"`
	Answer        *string `json:"answer,omitempty"`
	Practice      *string `json:"practice,omitempty"`
}

// sectionHeaders lists the recognized bolded header labels. Only these act
// as section boundaries; any other bold run is part of a body.
var sectionHeaders = []struct {
	key   string
	label string
}{
	{"understanding", "Understanding the Problem"},
	{"concepts", "Key Concepts"},
	{"solution", "Step-by-Step Solution"},
	{"answer", "The Answer"},
	{"practice", "Practice Problems"},
}

type headerMatch struct {
	key       string
	headerPos int // position of the opening **
	bodyStart int // position just past the closing ** and optional colon
}

// ParseSections extracts the labeled sections from one block of completion
// text. LLM output is loosely structured prose, so this degrades gracefully:
// sections whose headers are missing are simply absent, and unparseable text
// yields the zero value. It never fails; the caller always also keeps the
// raw text as a fallback.
//
// Matching is case-insensitive and position-based: each body runs from its
// header to the next recognized header in the text, regardless of the order
// the headers appear in. A duplicated header counts at its first occurrence.
func ParseSections(text string) Sections {
	lower := lowerASCII(text)

	var matches []headerMatch
	for _, h := range sectionHeaders {
		marker := "**" + strings.ToLower(h.label) + "**"
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}

		bodyStart := idx + len(marker)
		if bodyStart < len(text) && text[bodyStart] == ':' {
			bodyStart++
		}
		matches = append(matches, headerMatch{key: h.key, headerPos: idx, bodyStart: bodyStart})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].headerPos < matches[j].headerPos
	})

	var sections Sections
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].headerPos
		}
		body := strings.TrimSpace(text[m.bodyStart:end])
		sections.set(m.key, body)
	}
	return sections
}

// lowerASCII lowercases ASCII letters only. Full Unicode lowercasing can
// change the byte length of the text (İ shrinks, Ⱥ grows), which would
// corrupt the offsets used to slice the original text. The header labels
// are pure ASCII, so this is all the folding matching needs.
func lowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func (s *Sections) set(key, body string) {
	switch key {
	case "understanding":
		s.Understanding = &body
	case "concepts":
		s.Concepts = &body
	case "solution":
		s.Solution = &body
	case "answer":
		s.Answer = &body
	case "practice":
		s.Practice = &body
	}
}
