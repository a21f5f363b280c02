package rewrite

import "strings"

// responseDelimiters mark where a completion switches from rewritten
// text to explanation. Models are prompted to use EXPLANATION: but
// drift into markdown variants often enough to handle them all.
var responseDelimiters = []string{
	"EXPLANATION:",
	"**Explanation:**",
	"**Why:**",
	"---",
	"\n\n**Changes",
}

// rewritePrefixes are labels some models prepend to the rewritten text.
var rewritePrefixes = []string{
	"REWRITE:",
	"**Rewrite:**",
}

// parseResponse splits a completion into rewritten text and
// explanation. Without a recognizable delimiter the whole response is
// the rewrite and the explanation is empty.
func parseResponse(full string) (rewritten, explanation string) {
	full = strings.TrimSpace(full)

	for _, delim := range responseDelimiters {
		idx := strings.Index(full, delim)
		if idx < 0 {
			continue
		}
		rewritten = stripRewritePrefix(full[:idx])
		explanation = strings.TrimSpace(full[idx+len(delim):])
		return rewritten, explanation
	}

	return stripRewritePrefix(full), ""
}

// stripRewritePrefix removes a leading rewrite label, if present.
func stripRewritePrefix(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range rewritePrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return s
}
