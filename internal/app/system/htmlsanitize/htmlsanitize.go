// Package htmlsanitize strips unsafe markup from user-authored HTML
// before it is stored. CMS page bodies and career descriptions pass
// through here on every save.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with scripts, event handlers, and other unsafe
// constructs removed. Standard formatting tags survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
