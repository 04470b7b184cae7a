// internal/app/system/routemap/validate.go
package routemap

import (
	"fmt"
	"strings"
)

// Overlaps reports template pairs that can both match some concrete path.
// Matching is first-declared-wins, so when two templates overlap the later
// one is silently shadowed for the paths they share. The startup pass logs
// each pair so a registry author finds out before a request does.
//
// Two templates overlap when they have the same method, the same segment
// count, and every segment pair is compatible: equal literals, or at least
// one side a placeholder. Exact (placeholder-free) entries never shadow:
// they are looked up before any template is tried.
func Overlaps(reg *Registry) []string {
	rules := reg.TemplatedRules()
	var out []string
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if templatesOverlap(rules[i], rules[j]) {
				out = append(out, fmt.Sprintf("%s shadows %s", rules[i].key(), rules[j].key()))
			}
		}
	}
	return out
}

func templatesOverlap(a, b Rule) bool {
	if a.Method != b.Method {
		return false
	}
	as := strings.Split(a.Template, "/")
	bs := strings.Split(b.Template, "/")
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if isPlaceholder(as[i]) || isPlaceholder(bs[i]) {
			continue
		}
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
