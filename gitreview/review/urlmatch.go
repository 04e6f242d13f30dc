package review

import (
	"regexp"
	"sort"
	"strings"
)

// MatchURL extracts owner and repository name from a
// remote URL on host. Both SSH ("git@host:o/r.git") and
// HTTP ("https://host/o/r.git") forms are accepted. It
// returns two empty strings when url is not on host. The
// host must start the authority, so "notgithub.com" is
// not on "github.com".
func MatchURL(host string, url string) (string, string) {
	if host == "" {
		return "", ""
	}

	re := regexp.MustCompile(
		`(?:^|[@/])` + regexp.QuoteMeta(host) + `[:/]([^/]+)/(.+)`,
	)

	m := re.FindStringSubmatch(url)
	if m == nil {
		return "", ""
	}

	repo := strings.TrimSuffix(m[2], "/")
	repo = strings.TrimSuffix(repo, ".git")

	if repo == "" {
		return "", ""
	}

	return m[1], repo
}

// MatchInsteadOf looks for a git "url.<base>.insteadof"
// rule whose base is on host and whose value occurs in
// url. rules maps config keys to values as printed by
// git config --get-regexp: section and variable names are
// lower-cased, the base keeps its case. It returns the
// matching insteadof value and the base, or two empty
// strings.
func MatchInsteadOf(
	rules map[string]string,
	host string,
	url string,
) (string, string) {
	if host == "" {
		return "", ""
	}

	re := regexp.MustCompile(
		`^url\.(.*(?i:` + regexp.QuoteMeta(host) +
			`).*)\.insteadof$`,
	)

	// Map iteration is random; sort for a stable pick.
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		val := rules[key]

		m := re.FindStringSubmatch(key)
		if m == nil || val == "" {
			continue
		}

		if strings.Contains(url, val) {
			return val, m[1]
		}
	}

	return "", ""
}

// RewriteURL applies an insteadof pair returned by
// MatchInsteadOf. url is returned unchanged when
// insteadOf is empty.
func RewriteURL(
	url string,
	insteadOf string,
	base string,
) string {
	if insteadOf == "" {
		return url
	}

	return strings.Replace(url, insteadOf, base, 1)
}
