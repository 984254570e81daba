// Package misid parses the tagged MIS identifier strings stored in sheet cells.
//
// A cell holds one or more identifiers. The current format is newline-separated
// with a section/slot prefix per line (W1:, W2:, WP:, M1:, MP:, S1:, SP:); the
// legacy format is a comma-separated list with no prefixes. Display strings keep
// the prefix, lookup values strip it.
package misid

import "strings"

// Slot codes within a section.
const (
	SlotPart1 = "1"
	SlotPart2 = "2"
	SlotPatch = "P"
)

// Token is one identifier from a cell, in both display and lookup form.
type Token struct {
	Display string // as stored, prefix included
	Lookup  string // prefix stripped
	Section string // W, M or S; empty for legacy untagged tokens
	Slot    string // 1, 2 or P; empty for legacy untagged tokens
}

// Tagged returns true if the token carried a recognized section/slot prefix.
func (t Token) Tagged() bool {
	return t.Section != ""
}

// IsPlaceholder reports whether a raw cell value means "no identifier yet".
func IsPlaceholder(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "-" || strings.EqualFold(trimmed, "n/a")
}

// ParseCell splits a raw cell value into identifier tokens. Cells containing a
// newline use the tagged format; otherwise the legacy comma format applies.
// Placeholder input yields an empty slice, never an error.
func ParseCell(raw string) []Token {
	if IsPlaceholder(raw) {
		return nil
	}

	var parts []string
	if strings.Contains(raw, "\n") {
		parts = strings.Split(raw, "\n")
	} else {
		parts = strings.Split(raw, ",")
	}

	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		section, slot := parseTag(trimmed)
		tokens = append(tokens, Token{
			Display: trimmed,
			Lookup:  StripTag(trimmed),
			Section: section,
			Slot:    slot,
		})
	}
	return tokens
}

// StripTag removes a recognized section/slot prefix from an identifier.
// Strings without a recognized prefix pass through unchanged, so the
// operation is idempotent.
func StripTag(s string) string {
	trimmed := strings.TrimSpace(s)
	if section, _ := parseTag(trimmed); section == "" {
		return trimmed
	}
	idx := strings.Index(trimmed, ":")
	return strings.TrimSpace(trimmed[idx+1:])
}

// parseTag inspects the text before the first colon. A valid tag is exactly
// one section letter followed by one slot code.
func parseTag(s string) (section, slot string) {
	idx := strings.Index(s, ":")
	if idx != 2 {
		return "", ""
	}
	sec := strings.ToUpper(s[:1])
	sl := strings.ToUpper(s[1:2])
	if sec != "W" && sec != "M" && sec != "S" {
		return "", ""
	}
	if sl != SlotPart1 && sl != SlotPart2 && sl != SlotPatch {
		return "", ""
	}
	return sec, sl
}
