// Package parser turns free-form markdown itinerary text into Day and
// Activity records. Every function here is pure: absence of content is
// reported as empty values, never as errors.
package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkPattern        = regexp.MustCompile(`\[([^\[\]\n]+)\]\(((?:[^()\s]|\([^()\s]*\))+)\)`)
	placeholderPattern = regexp.MustCompile(`@@LINK(\d+)@@`)
	bulletPattern      = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+`)
	boldPattern        = regexp.MustCompile(`\*\*|__`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw model text: literal escape sequences become real
// newlines, list items are joined as sentences, bold markers are dropped and
// whitespace is collapsed. Markdown links are lifted out before any of that
// and restored verbatim afterwards, so URLs are never touched by cleanup.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var links []string
	s := linkPattern.ReplaceAllStringFunc(raw, func(m string) string {
		links = append(links, m)
		return fmt.Sprintf("@@LINK%d@@", len(links)-1)
	})

	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, " ")
	s = joinListItems(s)
	s = boldPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		var idx int
		if _, err := fmt.Sscanf(m, "@@LINK%d@@", &idx); err != nil || idx >= len(links) {
			return m
		}
		return links[idx]
	})
}

// joinListItems flattens lines into running text. A bullet or numbered item
// starts a new sentence; the previous piece gets a full stop if it lacks
// terminal punctuation.
func joinListItems(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isItem := bulletPattern.MatchString(line)
		if isItem {
			line = strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
			if line == "" {
				continue
			}
		}
		if b.Len() > 0 {
			if isItem && !endsSentence(b.String()) {
				b.WriteString(".")
			}
			b.WriteString(" ")
		}
		b.WriteString(line)
	}
	return b.String()
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, " *_")
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}
