package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/service"
	"github.com/outlaydev/outlay/internal/outlay/store"
	"github.com/outlaydev/outlay/pkg/httpx"
	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/outlaydev/outlay/pkg/slogx"

	_ "github.com/outlaydev/outlay/api/outlay" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	UserService     *service.UserService
	MFAService      *service.MFAService
	WebAuthnService *service.WebAuthnService
	TeamService     *service.TeamService
	CategoryService *service.CategoryService
	ExpenseService  *service.ExpenseService
	ReportService   *service.ReportService
}

func NewRouter(
	signer *jwtx.Signer,
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerMFA()
	r.registerTeams()
	r.registerCategories()
	r.registerExpenses()
	r.registerReports()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Outlay API
//	@version		0.1.0
//	@description	Expense management service with invite-based account activation and
//	@description	mandatory multi-factor enrollment (TOTP or passkey) before first login.
//	@description
//	@description				Session tokens are Ed25519-signed JWTs carrying the AMR claim of the factors used.
//
//	@contact.name				Outlay Maintainers
//	@contact.url				https://github.com/outlaydev/outlay
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	usersHandler := &UsersHandler{
		UserService:     r.UserService,
		WebAuthnService: r.WebAuthnService,
	}

	// POST /setup-password - strict limit, consumes one-time tokens
	r.Mux.Handle("POST /v1/users/setup-password",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleSetupPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict limit (authentication attempts)
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleMe),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /invite - admin only, checked in the handler
	r.Mux.Handle("POST /v1/users/invite",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleInvite),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RequireMFA(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMFA() {
	mfaHandler := &MFAHandler{MFAService: r.MFAService}

	// Challenge-bound endpoints carry no bearer token; the challenge ID
	// is the credential. Strict IP limits slow guessing.
	r.Mux.Handle("POST /v1/users/select-mfa-method",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleSelectMethod),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/verify-mfa-setup",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleVerifySetup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/verify-login-mfa",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleVerifyLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTeams() {
	teamsHandler := &TeamsHandler{TeamService: r.TeamService}

	r.Mux.Handle("POST /v1/teams",
		httpx.Chain(http.HandlerFunc(teamsHandler.HandleCreateTeam),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/teams",
		httpx.Chain(http.HandlerFunc(teamsHandler.HandleListTeams),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Membership changes require a fully verified session
	r.Mux.Handle("POST /v1/teams/{teamID}/members",
		httpx.Chain(http.HandlerFunc(teamsHandler.HandleAddMember),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RequireMFA(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCategories() {
	categoriesHandler := &CategoriesHandler{CategoryService: r.CategoryService}

	r.Mux.Handle("POST /v1/categories",
		httpx.Chain(http.HandlerFunc(categoriesHandler.HandleCreateCategory),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/categories",
		httpx.Chain(http.HandlerFunc(categoriesHandler.HandleListCategories),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/categories/{categoryID}/budget",
		httpx.Chain(http.HandlerFunc(categoriesHandler.HandleUpdateBudget),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RequireMFA(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerExpenses() {
	expensesHandler := &ExpensesHandler{ExpenseService: r.ExpenseService}

	r.Mux.Handle("POST /v1/expenses",
		httpx.Chain(http.HandlerFunc(expensesHandler.HandleCreateExpense),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/expenses",
		httpx.Chain(http.HandlerFunc(expensesHandler.HandleListExpenses),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Approvals move money state, so they need a second factor
	r.Mux.Handle("PUT /v1/expenses/{expenseID}/status",
		httpx.Chain(http.HandlerFunc(expensesHandler.HandleSetStatus),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RequireMFA(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerReports() {
	reportsHandler := &ReportsHandler{ReportService: r.ReportService}

	r.Mux.Handle("GET /v1/reports/summary",
		httpx.Chain(http.HandlerFunc(reportsHandler.HandleSummary),
			httpx.AuthnMiddleware(r.verifier, r.issuer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer))
}
