package commitmsg

import (
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Approval is the comment posted by approve.
const Approval = "Reviewed and approved."

const mergeTemplate = `Accept request #{number} ` +
	`and merge changes into "{source}/{branch}"`

// Merge renders the commit message used when merging
// request number coming from branch of repository
// source.
func Merge(number int, source string, branch string) string {
	return fasttemplate.ExecuteStringStd(
		mergeTemplate, "{", "}",
		map[string]any{
			"number": strconv.Itoa(number),
			"source": source,
			"branch": branch,
		},
	)
}

// Split separates a commit message into its subject
// line and the remaining body, both trimmed.
func Split(msg string) (string, string) {
	msg = strings.TrimSpace(msg)

	title, body, _ := strings.Cut(msg, "\n")

	return strings.TrimSpace(title), strings.TrimSpace(body)
}
