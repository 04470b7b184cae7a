// internal/app/system/gate/api.go
package gate

import (
	"encoding/json"
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/routemap"
	"go.uber.org/zap"
)

// API denial messages. 401 means "present a credential", 403 means "your
// credential does not entitle you"; clients branch on the code, humans
// read the message.
const (
	msgNoCredential      = "authentication required"
	msgInvalidCredential = "invalid or expired credential"
	msgNoRoute           = "access not permitted"
	msgInsufficient      = "insufficient permission"
)

// publicAPIPaths bypass every check: credential issuance and liveness.
var publicAPIPaths = map[string]struct{}{
	"/api/auth/login":  {},
	"/api/auth/logout": {},
	"/api/health":      {},
}

// API is the programmatic-surface middleware. Lookups use the compound
// METHOD:path key; an unregistered method+path combination denies with
// 403, it never falls through to the handler.
func (g *Gate) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routemap.Normalize(r.URL.Path)
		if _, ok := publicAPIPaths[path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := auth.RawToken(r)
		if !ok {
			writeAPIError(w, http.StatusUnauthorized, msgNoCredential)
			return
		}
		cred, err := g.tokens.Verify(raw, g.now())
		if err != nil {
			writeAPIError(w, http.StatusUnauthorized, msgInvalidCredential)
			return
		}
		r = auth.WithCredential(r, cred)

		if authz.HasOverride(cred.Permissions) {
			next.ServeHTTP(w, r)
			return
		}

		req, found := g.api.Match(r.Method, path)
		if !found {
			g.log.Warn("api route has no permission entry",
				zap.String("method", r.Method),
				zap.String("path", path),
				zap.String("subject", cred.SubjectID))
			writeAPIError(w, http.StatusForbidden, msgNoRoute)
			return
		}
		if !authz.Evaluate(req, cred.Permissions) {
			writeAPIError(w, http.StatusForbidden, msgInsufficient)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
