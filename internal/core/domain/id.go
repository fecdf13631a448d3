package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexIDPattern      = regexp.MustCompile(`^[a-f0-9]{32}$`)
	trailingHexID     = regexp.MustCompile(`([a-f0-9]{32})$`)
	dashedUUIDPattern = regexp.MustCompile(`([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})`)
)

// ParseID extracts a 32-character hex identifier from a Notion URL or a
// raw identifier string. It accepts:
//
//   - a bare 32-char hex ID
//   - a dash-delimited UUID
//   - a notion.so URL whose final path segment ends in either form,
//     optionally followed by a query string (stripped)
//
// Pages and databases share the same rule.
func ParseID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)

	if strings.Contains(s, "notion.so") {
		// Strip query parameters (?v=..., ?source=copy_link, ...).
		clean, _, _ := strings.Cut(s, "?")

		if m := trailingHexID.FindString(strings.ReplaceAll(clean, "-", "")); m != "" {
			return m, nil
		}
		if m := dashedUUIDPattern.FindString(clean); m != "" {
			return strings.ReplaceAll(m, "-", ""), nil
		}
	}

	clean := strings.ReplaceAll(s, "-", "")
	if hexIDPattern.MatchString(clean) {
		return clean, nil
	}

	return "", fmt.Errorf("%w: not a Notion URL or ID: %q", ErrInvalidInput, urlOrID)
}

// FormatUUID renders a 32-char hex ID in the dashed 8-4-4-4-12 form the
// source API reports. IDs that are not 32 hex chars pass through unchanged.
func FormatUUID(id string) string {
	if !hexIDPattern.MatchString(id) {
		return id
	}
	return id[:8] + "-" + id[8:12] + "-" + id[12:16] + "-" + id[16:20] + "-" + id[20:]
}
