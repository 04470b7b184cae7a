// internal/app/system/routemap/routemap.go

// Package routemap holds the route permission tables and the template
// matcher. Two independent registries exist: one for page navigation
// (keyed by path template) and one for the JSON API (keyed by
// METHOD:path-template). Both are built once at startup and are
// immutable afterwards, so concurrent reads need no locking.
package routemap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/corefield/opsdesk/internal/app/system/authz"
)

// Rule binds one route template to a permission requirement.
// Method is empty for page rules; the page registry matches by path only
// because navigation is always a GET-style operation.
type Rule struct {
	Method   string
	Template string
	Require  authz.Requirement
}

// key returns the registry key, METHOD:template for API rules.
func (r Rule) key() string {
	if r.Method == "" {
		return r.Template
	}
	return r.Method + ":" + r.Template
}

// placeholderPattern matches one path segment: one or more of the
// characters a resource identifier may contain, never a slash.
const placeholderPattern = "[A-Za-z0-9_-]+"

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Registry is the immutable route permission table. Lookups try the
// exact key first; only then are templated entries scanned in their
// declaration order, first match wins.
type Registry struct {
	exact     map[string]authz.Requirement
	templated []compiledRule
}

// New compiles a rule list into a registry. Templates must be absolute
// paths; a template may appear only once. Placeholder segments are
// written [name] and match exactly one path segment.
func New(rules []Rule) (*Registry, error) {
	reg := &Registry{exact: make(map[string]authz.Requirement, len(rules))}
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if !strings.HasPrefix(rule.Template, "/") {
			return nil, fmt.Errorf("route template %q must start with /", rule.Template)
		}
		if _, dup := seen[rule.key()]; dup {
			return nil, fmt.Errorf("duplicate route template %q", rule.key())
		}
		seen[rule.key()] = struct{}{}

		if !hasPlaceholder(rule.Template) {
			reg.exact[rule.key()] = rule.Require
			continue
		}
		re, err := compileTemplate(rule.Template)
		if err != nil {
			return nil, fmt.Errorf("route template %q: %w", rule.key(), err)
		}
		reg.templated = append(reg.templated, compiledRule{rule: rule, re: re})
	}
	return reg, nil
}

// MustNew is New for the static tables declared in this package, where a
// bad template is a programming error.
func MustNew(rules []Rule) *Registry {
	reg, err := New(rules)
	if err != nil {
		panic(err)
	}
	return reg
}

// Match resolves a concrete request path (and method, for API lookups;
// pass "" for page lookups) to the requirement of the best-matching rule.
// ok is false when no rule matches: the caller must treat that as a
// denial, never as an implicit allow.
func (reg *Registry) Match(method, path string) (authz.Requirement, bool) {
	path = Normalize(path)
	key := path
	if method != "" {
		key = method + ":" + path
	}

	if req, ok := reg.exact[key]; ok {
		return req, true
	}
	for _, cr := range reg.templated {
		if cr.rule.Method != method {
			continue
		}
		if cr.re.MatchString(path) {
			return cr.rule.Require, true
		}
	}
	return authz.Requirement{}, false
}

// TemplatedRules returns the placeholder-bearing rules in declaration
// order. Exact entries are excluded: lookup tries them first, so they can
// never be shadowed. Used by the overlap validation pass.
func (reg *Registry) TemplatedRules() []Rule {
	out := make([]Rule, 0, len(reg.templated))
	for _, cr := range reg.templated {
		out = append(out, cr.rule)
	}
	return out
}

// Normalize strips a single trailing slash so /employees/ and /employees
// resolve identically. The root path stays "/".
func Normalize(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

func hasPlaceholder(template string) bool {
	for _, seg := range strings.Split(template, "/") {
		if isPlaceholder(seg) {
			return true
		}
	}
	return false
}

func isPlaceholder(seg string) bool {
	return len(seg) > 2 && strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]")
}

// compileTemplate turns a path template into a fully anchored pattern,
// replacing each [name] segment with the single-segment wildcard and
// quoting everything else.
func compileTemplate(template string) (*regexp.Regexp, error) {
	segs := strings.Split(template, "/")
	parts := make([]string, len(segs))
	for i, seg := range segs {
		if isPlaceholder(seg) {
			parts[i] = placeholderPattern
			continue
		}
		parts[i] = regexp.QuoteMeta(seg)
	}
	return regexp.Compile("^" + strings.Join(parts, "/") + "$")
}
