// internal/app/system/gate/gate.go

// Package gate is the request authorization checkpoint. Every page view
// and API call passes through one of its two middlewares, which verify
// the bearer credential, resolve the matching route permission rule, and
// evaluate it against the caller's granted set.
//
// Every failure mode denies: no credential, an unverifiable credential,
// a route with no registry entry, and an unsatisfied requirement all end
// the request. The two surfaces differ only in how denial is expressed:
// page navigation redirects (login for "who are you", unauthorized for
// "not entitled"), the API answers 401/403 with a JSON message.
package gate

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/routemap"
	"go.uber.org/zap"
)

const (
	// LoginPath is the page the UI surface redirects to when the caller
	// has no usable credential. The original path rides along in the
	// "from" query parameter so login can resume it.
	LoginPath = "/auth/login"

	// UnauthorizedPath is where authenticated-but-unentitled navigation
	// lands. Deliberately not the login page: re-authenticating would
	// not help.
	UnauthorizedPath = "/unauthorized"
)

// Gate evaluates authorization for both surfaces. All fields are set at
// construction and never mutated; a single Gate serves every request
// concurrently.
type Gate struct {
	tokens *auth.TokenManager
	pages  *routemap.Registry
	api    *routemap.Registry
	log    *zap.Logger

	// now is the per-request clock source, injectable in tests. Each
	// request reads it once; that single instant drives every expiry
	// comparison for the request.
	now func() time.Time
}

// New constructs the gate over the two route registries. It runs the
// template overlap pass and logs any shadowed pair as a configuration
// warning; the gate still serves, first-declared-wins as documented.
func New(tokens *auth.TokenManager, pages, api *routemap.Registry, logger *zap.Logger) *Gate {
	for _, msg := range routemap.Overlaps(pages) {
		logger.Warn("page route table has overlapping templates", zap.String("pair", msg))
	}
	for _, msg := range routemap.Overlaps(api) {
		logger.Warn("api route table has overlapping templates", zap.String("pair", msg))
	}
	return &Gate{tokens: tokens, pages: pages, api: api, log: logger, now: time.Now}
}

// WithClock returns a copy of the gate using the given clock. Test hook.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	c := *g
	c.now = now
	return &c
}

// publicPages need no credential at all. The login page additionally
// bounces already-authenticated callers back to the application root.
var publicPages = map[string]struct{}{
	LoginPath: {},
	"/health": {},
}

// publicPagePrefixes are asset paths outside the policy space.
var publicPagePrefixes = []string{"/static/", "/files/"}

// openPages are reachable by any authenticated caller without a route
// table entry: the landing page and the failure pages themselves.
var openPages = map[string]struct{}{
	"/":              {},
	UnauthorizedPath: {},
	"/forbidden":     {},
	"/error":         {},
	"/auth/logout":   {},
}

// Pages is the navigation-surface middleware.
func (g *Gate) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routemap.Normalize(r.URL.Path)
		now := g.now()

		if g.isPublicPage(path) {
			// A caller holding a currently valid credential has no
			// business on the login page; send them home instead.
			if path == LoginPath {
				if raw, ok := auth.RawToken(r); ok {
					if _, err := g.tokens.Verify(raw, now); err == nil {
						http.Redirect(w, r, "/", http.StatusSeeOther)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := auth.RawToken(r)
		if !ok {
			g.redirectToLogin(w, r)
			return
		}
		cred, err := g.tokens.Verify(raw, now)
		if err != nil {
			g.redirectToLogin(w, r)
			return
		}
		r = auth.WithCredential(r, cred)

		if _, open := openPages[path]; open {
			next.ServeHTTP(w, r)
			return
		}
		if authz.HasOverride(cred.Permissions) {
			next.ServeHTTP(w, r)
			return
		}

		req, found := g.pages.Match("", path)
		if !found {
			// Configuration gap: a page shipped without a permission
			// entry. Denial is the intended fail-closed outcome; the log
			// line is the operational signal to add the entry.
			g.log.Warn("page route has no permission entry",
				zap.String("path", path),
				zap.String("subject", cred.SubjectID))
			http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
			return
		}
		if !authz.Evaluate(req, cred.Permissions) {
			http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) isPublicPage(path string) bool {
	if _, ok := publicPages[path]; ok {
		return true
	}
	for _, prefix := range publicPagePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *Gate) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, LoginPath+"?from="+ret, http.StatusSeeOther)
}
