package enrollment

import (
	"regexp"
	"strings"
)

// disallowed matches every character outside the storage-key character set:
// alphanumeric, dot, underscore, hyphen and space. Stripping everything else
// also removes path separators, which defends against traversal.
var disallowed = regexp.MustCompile(`[^A-Za-z0-9._\- ]+`)

// Sanitize reduces s to the restricted storage-key character set. Both the
// enrollment label and the original filename pass through here before any
// key is derived.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = disallowed.ReplaceAllString(s, "")
	// Leading dots survive the character class but read as relative path
	// components (".." in particular); drop them.
	s = strings.TrimLeft(s, ".")
	return s
}
