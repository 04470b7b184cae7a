// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/corefield/opsdesk/internal/app/features/errors"
	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/timeouts"
	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users    *userstore.Store
	Tokens   *auth.TokenManager
	TokenTTL time.Duration
	Secure   bool // set cookies with Secure in production
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, tokens *auth.TokenManager, ttl time.Duration, secure bool, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Tokens:   tokens,
		TokenTTL: ttl,
		Secure:   secure,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error string
	Email string
	From  string
}

// ServeLogin handles GET /auth/login. The gate already redirects callers
// with a valid credential to /, so anyone reaching here needs the form.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign in", "/"),
		From:   query.Get(r, "from"),
	})
}

// HandleLoginPost handles POST /auth/login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "Invalid form data.", "/auth/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	from := strings.TrimSpace(r.FormValue("from"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, from)
		return
	}

	user, ok := h.authenticate(r.Context(), email, password)
	if !ok {
		h.renderFormWithError(w, r, "Incorrect email or password.", email, from)
		return
	}

	now := time.Now().UTC()
	token, err := h.Tokens.Mint(auth.Credential{
		SubjectID:   user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
	}, now, h.TokenTTL)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mint credential failed", err, "A server error occurred.", "/auth/login")
		return
	}
	auth.SetTokenCookie(w, token, now.Add(h.TokenTTL), h.Secure)

	h.Log.Info("user logged in", zap.String("user_id", user.ID))

	dest := urlutil.SafeReturn(from, "", "/")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// authenticated holds what the token needs from a verified account.
type authenticated struct {
	ID          string
	Role        string
	Permissions []string
}

// authenticate looks up the account and checks the password. All failure
// modes collapse into !ok so login probing learns nothing.
func (h *Handler) authenticate(reqCtx context.Context, email, password string) (authenticated, bool) {
	ctx, cancel := context.WithTimeout(reqCtx, timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch err {
	case nil:
	case mongo.ErrNoDocuments:
		h.Log.Info("login failed: unknown email")
		return authenticated{}, false
	default:
		h.Log.Error("login lookup failed", zap.Error(err))
		return authenticated{}, false
	}

	if u.Status != "active" {
		h.Log.Info("login failed: account disabled", zap.String("user_id", u.ID.Hex()))
		return authenticated{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		h.Log.Info("login failed: wrong password", zap.String("user_id", u.ID.Hex()))
		return authenticated{}, false
	}

	return authenticated{
		ID:          u.ID.Hex(),
		Role:        u.Role,
		Permissions: u.Permissions,
	}, true
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, from string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:  msg,
		Email:  email,
		From:   from,
	})
}
