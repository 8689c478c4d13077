// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/tomtom215/lectern/internal/models"
)

// hrefPattern matches href attribute values in rendered report HTML. The
// reports are generated by a known renderer, so attribute-level matching is
// sufficient; this is not a general HTML parser.
var hrefPattern = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)

// NormalizeURL canonicalizes a URL for comparison: the scheme defaults to
// https and is lowercased, the host is lowercased, trailing slashes are
// stripped from the path, and the query string and fragment are dropped.
// Path case is preserved. Unparseable input falls back to a lowercased,
// trimmed form so matching degrades rather than fails.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.EscapedPath(), "/")

	return scheme + "://" + host + path
}

// NormalizeTitle canonicalizes a title for comparison: lowercased with runs
// of whitespace collapsed to single spaces.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// ExtractReportURLs returns the set of normalized URLs linked from the
// rendered report HTML.
func ExtractReportURLs(reportHTML string) map[string]struct{} {
	urls := make(map[string]struct{})
	if reportHTML == "" {
		return urls
	}
	for _, match := range hrefPattern.FindAllStringSubmatch(reportHTML, -1) {
		if norm := NormalizeURL(match[1]); norm != "" {
			urls[norm] = struct{}{}
		}
	}
	return urls
}

// VisibleEntries returns the manifest entries whose normalized URL appears
// as a link in the report HTML. When the report contains no links at all,
// every entry is returned: an empty link set means the report format is not
// link-based, not that nothing was shown.
func VisibleEntries(m *models.RunManifest, reportHTML string) []models.ManifestEntry {
	if m == nil {
		return nil
	}

	visible := ExtractReportURLs(reportHTML)
	if len(visible) == 0 {
		out := make([]models.ManifestEntry, len(m.Papers))
		copy(out, m.Papers)
		return out
	}

	var out []models.ManifestEntry
	for _, entry := range m.Papers {
		if _, ok := visible[NormalizeURL(entry.URL)]; ok {
			out = append(out, entry)
		}
	}
	return out
}
