// Package llmtext parses the textual response formats the pipeline asks the
// generation service to produce: flat numbered lists and block-structured
// responses where a colon-terminated header opens a category section.
package llmtext

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyResponse reports a response with no parseable content at all.
	ErrEmptyResponse = errors.New("empty generator response")
	// ErrNoSections reports a sectioned response without a single header.
	ErrNoSections = errors.New("no category sections in response")
)

var itemExpr = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)

// Section is one category block of a sectioned response.
type Section struct {
	Header string
	Items  []string
}

// ParseNumberedList collects the payloads of numbered lines, in order.
// Non-matching lines are ignored; payloads empty after cleaning are dropped.
func ParseNumberedList(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		match := itemExpr.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if item := CleanItem(match[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseSections splits a response into category sections. A line ending in a
// colon that is not itself a numbered item opens a section; numbered lines
// belong to the open section. Items before any header are discarded.
func ParseSections(raw string) ([]Section, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	var (
		sections []Section
		current  *Section
	)
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if match := itemExpr.FindStringSubmatch(trimmed); match != nil {
			if current == nil {
				continue
			}
			if item := CleanItem(match[1]); item != "" {
				current.Items = append(current.Items, item)
			}
			continue
		}

		if strings.HasSuffix(trimmed, ":") {
			sections = append(sections, Section{
				Header: CleanItem(strings.TrimSuffix(trimmed, ":")),
			})
			current = &sections[len(sections)-1]
		}
	}

	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	return sections, nil
}

// CleanItem strips surrounding quotes, markdown emphasis, and stray
// punctuation from a parsed payload.
func CleanItem(payload string) string {
	item := strings.TrimSpace(payload)
	item = strings.Trim(item, `"'`)
	item = strings.Trim(item, "*_`")
	item = strings.TrimRight(item, ".,;")
	return strings.TrimSpace(item)
}
