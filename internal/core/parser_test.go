package core

import (
	"strings"
	"testing"
)

const canonicalCompletion = `Great question! Let's work through this together.

1. **Understanding the Problem**: We need to find the value of x that makes 2x + 5 = 13 true.

2. **Key Concepts**: An equation stays balanced when we apply the same operation to both sides.

3. **Step-by-Step Solution**: Subtract 5 from both sides to get 2x = 8, then divide both sides by 2.

4. **The Answer**: x = 4

5. **Practice Problems**:

**Problem 1**: Solve 3x + 1 = 10

**Problem 2**: Solve 5x - 2 = 13`

func deref(t *testing.T, s *string, name string) string {
	t.Helper()
	if s == nil {
		t.Fatalf("expected %s section to be present", name)
	}
	return *s
}

func TestParseSections_AllFiveHeaders(t *testing.T) {
	sections := ParseSections(canonicalCompletion)

	cases := []struct {
		name string
		got  *string
		want string
	}{
		{"understanding", sections.Understanding, "We need to find the value of x that makes 2x + 5 = 13 true."},
		{"concepts", sections.Concepts, "An equation stays balanced when we apply the same operation to both sides."},
		{"solution", sections.Solution, "Subtract 5 from both sides to get 2x = 8, then divide both sides by 2."},
		{"answer", sections.Answer, "x = 4"},
	}
	for _, c := range cases {
		got := deref(t, c.got, c.name)
		if !strings.HasPrefix(got, c.want) {
			t.Errorf("%s = %q, want prefix %q", c.name, got, c.want)
		}
		// Bodies must not swallow the following section's numbering.
		if strings.Contains(got, "**") {
			t.Errorf("%s body contains a header marker: %q", c.name, got)
		}
	}

	practice := deref(t, sections.Practice, "practice")
	if practice == "" {
		t.Error("practice body is empty")
	}
}

func TestParseSections_TrimsWhitespace(t *testing.T) {
	sections := ParseSections("**The Answer**:   \n\n  x = 4  \n\n")
	if got := deref(t, sections.Answer, "answer"); got != "x = 4" {
		t.Errorf("answer = %q, want %q", got, "x = 4")
	}
}

func TestParseSections_MissingHeader(t *testing.T) {
	text := strings.Replace(canonicalCompletion, "**The Answer**: x = 4", "The answer is x = 4", 1)
	sections := ParseSections(text)

	if sections.Answer != nil {
		t.Errorf("expected answer section to be absent, got %q", *sections.Answer)
	}
	deref(t, sections.Understanding, "understanding")
	deref(t, sections.Concepts, "concepts")
	deref(t, sections.Solution, "solution")
	deref(t, sections.Practice, "practice")
}

func TestParseSections_NoHeadersAtAll(t *testing.T) {
	sections := ParseSections("Sorry, I can only help with school subjects.")

	if sections != (Sections{}) {
		t.Errorf("expected empty sections, got %+v", sections)
	}
}

func TestParseSections_EmptyInput(t *testing.T) {
	if got := ParseSections(""); got != (Sections{}) {
		t.Errorf("expected empty sections for empty input, got %+v", got)
	}
}

func TestParseSections_CaseInsensitive(t *testing.T) {
	sections := ParseSections("**the answer**: 42\n\n**KEY CONCEPTS**: arithmetic")

	if got := deref(t, sections.Answer, "answer"); got != "42" {
		t.Errorf("answer = %q, want %q", got, "42")
	}
	if got := deref(t, sections.Concepts, "concepts"); got != "arithmetic" {
		t.Errorf("concepts = %q, want %q", got, "arithmetic")
	}
}

func TestParseSections_OptionalColon(t *testing.T) {
	sections := ParseSections("**The Answer**\nx = 4")
	if got := deref(t, sections.Answer, "answer"); got != "x = 4" {
		t.Errorf("answer = %q, want %q", got, "x = 4")
	}
}

func TestParseSections_PracticeKeepsSubHeaders(t *testing.T) {
	sections := ParseSections(canonicalCompletion)
	practice := deref(t, sections.Practice, "practice")

	if !strings.Contains(practice, "**Problem 1**") {
		t.Errorf("practice body truncated before first sub-header: %q", practice)
	}
	if !strings.Contains(practice, "**Problem 2**") {
		t.Errorf("practice body truncated before second sub-header: %q", practice)
	}
}

func TestParseSections_OutOfOrderHeaders(t *testing.T) {
	text := "**The Answer**: x = 4\n\n**Understanding the Problem**: solve for x\n\n**Practice Problems**: try 3x = 9"
	sections := ParseSections(text)

	if got := deref(t, sections.Answer, "answer"); got != "x = 4" {
		t.Errorf("answer = %q, want %q", got, "x = 4")
	}
	if got := deref(t, sections.Understanding, "understanding"); got != "solve for x" {
		t.Errorf("understanding = %q, want %q", got, "solve for x")
	}
	if got := deref(t, sections.Practice, "practice"); got != "try 3x = 9" {
		t.Errorf("practice = %q, want %q", got, "try 3x = 9")
	}
}

func TestParseSections_DuplicateHeaderFirstWins(t *testing.T) {
	text := "**The Answer**: first\n\n**Key Concepts**: algebra\n\n**The Answer**: second"
	sections := ParseSections(text)

	if got := deref(t, sections.Answer, "answer"); got != "first" {
		t.Errorf("answer = %q, want first occurrence %q", got, "first")
	}
	if got := deref(t, sections.Concepts, "concepts"); !strings.HasPrefix(got, "algebra") {
		t.Errorf("concepts = %q, want prefix %q", got, "algebra")
	}
}

func TestParseSections_MultibyteTextBeforeHeader(t *testing.T) {
	// Runes whose lowercase form has a different byte length (İ shrinks,
	// Ⱥ grows) must not shift the header offsets or slice out of range.
	cases := []struct {
		name string
		text string
	}{
		{"shrinking rune", "İ\n**The Answer**: x = 4\ntrailing"},
		{"growing runes", strings.Repeat("Ⱥ", 100) + "\n**The Answer**: x = 4"},
		{"accented prose", "Très bien! Voilà the solution — étape par étape.\n\n**The Answer**: x = 4"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sections := ParseSections(c.text)
			got := deref(t, sections.Answer, "answer")
			if !strings.HasPrefix(got, "x = 4") {
				t.Errorf("answer = %q, want prefix %q", got, "x = 4")
			}
		})
	}
}

func TestParseSections_MultibyteBody(t *testing.T) {
	text := "**Key Concepts**: l'équation reste équilibrée\n\n**The Answer**: x = 4"
	sections := ParseSections(text)

	if got := deref(t, sections.Concepts, "concepts"); got != "l'équation reste équilibrée" {
		t.Errorf("concepts = %q", got)
	}
	if got := deref(t, sections.Answer, "answer"); got != "x = 4" {
		t.Errorf("answer = %q", got)
	}
}

func TestParseSections_BodySpansNewlines(t *testing.T) {
	text := "**Key Concepts**: line one\nline two\nline three\n\n**The Answer**: 7"
	sections := ParseSections(text)

	concepts := deref(t, sections.Concepts, "concepts")
	if concepts != "line one\nline two\nline three" {
		t.Errorf("concepts = %q, want multi-line body", concepts)
	}
}
