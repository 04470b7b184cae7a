// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	careersfeature "github.com/corefield/opsdesk/internal/app/features/careers"
	clientsfeature "github.com/corefield/opsdesk/internal/app/features/clients"
	employeesfeature "github.com/corefield/opsdesk/internal/app/features/employees"
	errorsfeature "github.com/corefield/opsdesk/internal/app/features/errors"
	expensesfeature "github.com/corefield/opsdesk/internal/app/features/expenses"
	healthfeature "github.com/corefield/opsdesk/internal/app/features/health"
	homefeature "github.com/corefield/opsdesk/internal/app/features/home"
	invoicesfeature "github.com/corefield/opsdesk/internal/app/features/invoices"
	loginfeature "github.com/corefield/opsdesk/internal/app/features/login"
	logoutfeature "github.com/corefield/opsdesk/internal/app/features/logout"
	pagesfeature "github.com/corefield/opsdesk/internal/app/features/pages"
	payrollfeature "github.com/corefield/opsdesk/internal/app/features/payroll"
	projectsfeature "github.com/corefield/opsdesk/internal/app/features/projects"
	usersfeature "github.com/corefield/opsdesk/internal/app/features/users"
	careerstore "github.com/corefield/opsdesk/internal/app/store/careers"
	clientstore "github.com/corefield/opsdesk/internal/app/store/clients"
	employeestore "github.com/corefield/opsdesk/internal/app/store/employees"
	expensestore "github.com/corefield/opsdesk/internal/app/store/expenses"
	invoicestore "github.com/corefield/opsdesk/internal/app/store/invoices"
	pagestore "github.com/corefield/opsdesk/internal/app/store/pages"
	payrollstore "github.com/corefield/opsdesk/internal/app/store/payroll"
	projectstore "github.com/corefield/opsdesk/internal/app/store/projects"
	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/auth"
	"github.com/corefield/opsdesk/internal/app/system/gate"
	"github.com/corefield/opsdesk/internal/app/system/routemap"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the portal.
//
// The router has two gated surfaces. Everything outside /api is the
// navigation surface: the gate verifies the credential cookie and
// checks the page permission table, redirecting to login or
// /unauthorized on denial. Everything under /api is the programmatic
// surface: the gate checks the METHOD:path table and answers 401/403
// with a JSON message. Both tables derive from the same resource
// declarations in routemap, so a route cannot be reachable on one
// surface with a permission the other surface does not know about.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	tokens, err := auth.NewTokenManager(appCfg.TokenSecret)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// The gate logs any shadowed template pairs at startup.
	g := gate.New(tokens, routemap.PageRegistry(), routemap.APIRegistry(), logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	db := deps.MongoDatabase

	users := userstore.New(db)
	employees := employeestore.New(db)
	payroll := payrollstore.New(db)
	expenses := expensestore.New(db)
	clients := clientstore.New(db)
	invoices := invoicestore.New(db)
	cmsPages := pagestore.New(db)
	careers := careerstore.New(db)
	projects := projectstore.New(db)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	homeHandler := homefeature.NewHandler(cmsPages, logger)
	loginHandler := loginfeature.NewHandler(users, tokens, appCfg.TokenTTL, secure, errLog, logger)
	logoutHandler := logoutfeature.NewHandler(secure)
	errorsHandler := errorsfeature.NewHandler()
	employeesHandler := employeesfeature.NewHandler(employees, errLog, logger)
	payrollHandler := payrollfeature.NewHandler(payroll, employees, errLog, logger)
	expensesHandler := expensesfeature.NewHandler(expenses, errLog, logger)
	clientsHandler := clientsfeature.NewHandler(clients, errLog, logger)
	invoicesHandler := invoicesfeature.NewHandler(invoices, clients, errLog, logger)
	pagesHandler := pagesfeature.NewHandler(cmsPages, errLog, logger)
	careersHandler := careersfeature.NewHandler(careers, errLog, logger)
	projectsHandler := projectsfeature.NewHandler(projects, errLog, logger)
	usersHandler := usersfeature.NewHandler(users, errLog, logger)

	r := chi.NewRouter()

	// Navigation surface.
	r.Group(func(ui chi.Router) {
		ui.Use(g.Pages)

		// Static assets with pre-compressed file support (gzip/brotli).
		ui.Handle("/static/*", fileserver.Handler("/static", "public"))

		ui.Mount("/health", healthfeature.Routes(healthHandler))
		ui.Mount("/auth/login", loginfeature.Routes(loginHandler))
		ui.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))
		errorsfeature.Register(ui, errorsHandler)

		ui.Mount("/employees", employeesfeature.Routes(employeesHandler))
		ui.Mount("/payroll", payrollfeature.Routes(payrollHandler))
		ui.Mount("/expenses", expensesfeature.Routes(expensesHandler))
		ui.Mount("/clients", clientsfeature.Routes(clientsHandler))
		ui.Mount("/invoices", invoicesfeature.Routes(invoicesHandler))
		ui.Mount("/pages", pagesfeature.Routes(pagesHandler))
		ui.Mount("/careers", careersfeature.Routes(careersHandler))
		ui.Mount("/manage-projects", projectsfeature.Routes(projectsHandler))
		ui.Mount("/users", usersfeature.Routes(usersHandler))

		ui.Mount("/", homefeature.Routes(homeHandler))
	})

	// Programmatic surface.
	r.Route("/api", func(api chi.Router) {
		api.Use(g.API)

		api.Mount("/auth", loginfeature.APIRoutes(loginHandler))
		api.Mount("/health", healthfeature.Routes(healthHandler))

		api.Mount("/employees", employeesfeature.APIRoutes(employeesHandler))
		api.Mount("/payroll", payrollfeature.APIRoutes(payrollHandler))
		api.Mount("/expenses", expensesfeature.APIRoutes(expensesHandler))
		api.Mount("/clients", clientsfeature.APIRoutes(clientsHandler))
		api.Mount("/invoices", invoicesfeature.APIRoutes(invoicesHandler))
		api.Mount("/pages", pagesfeature.APIRoutes(pagesHandler))
		api.Mount("/careers", careersfeature.APIRoutes(careersHandler))
		api.Mount("/manage-projects", projectsfeature.APIRoutes(projectsHandler))
		api.Mount("/users", usersfeature.APIRoutes(usersHandler))
	})

	return r, nil
}
