package linkcheck

import (
	"regexp"
	"strings"
)

var urlRe = regexp.MustCompile(`(?i)(https?://[^\s<>()]+)`)

// ExtractFirstURL returns the first http(s) link in text, or "" if
// there is none. Trailing prose after the link is excluded because the
// match stops at whitespace and brackets.
func ExtractFirstURL(text string) string {
	m := urlRe.FindString(text)
	return strings.TrimSpace(m)
}

// Domain returns the bare lowercased host of url: scheme, path, query,
// fragment and port stripped. Empty when no host can be found.
func Domain(url string) string {
	d := strings.ToLower(url)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	for _, sep := range []string{"/", "?", "#", ":"} {
		if i := strings.Index(d, sep); i >= 0 {
			d = d[:i]
		}
	}
	return d
}

// IsAllowed reports whether url's domain exactly equals, or is a
// dot-suffixed subdomain of, an entry in the comma-separated
// allow-list. Entries are trimmed and lowercased, empty entries are
// ignored. A URL with no extractable domain is never allowed.
func IsAllowed(url, allowDomainsCSV string) bool {
	d := Domain(url)
	if d == "" {
		return false
	}
	for _, entry := range strings.Split(allowDomainsCSV, ",") {
		a := strings.ToLower(strings.TrimSpace(entry))
		if a == "" {
			continue
		}
		if d == a || strings.HasSuffix(d, "."+a) {
			return true
		}
	}
	return false
}
