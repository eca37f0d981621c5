// Package server exposes the HTTP surfaces: the JSON API, the trusted
// service directory endpoints and the session backed admin panel.
package server

import (
	"context"
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/django/v3"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/config"
)

//go:embed views
var viewsFS embed.FS

// Server wires the account components onto a fiber application.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	repo     accounts.RepositoryManager
	tokens   accounts.TokenService
	provider *accounts.UserProvider
	importer *accounts.ImportUsersHandler
	sessions *session.Store
	logger   accounts.Logger
}

// New builds the application with every route registered.
func New(cfg *config.Config, repo accounts.RepositoryManager, tokens accounts.TokenService, provider *accounts.UserProvider, logger accounts.Logger) *Server {
	engine := django.NewPathForwardingFileSystem(http.FS(viewsFS), "/views", ".html")

	if logger == nil {
		logger = accounts.DefaultLogger()
	}

	s := &Server{
		cfg:      cfg,
		repo:     repo,
		tokens:   tokens,
		provider: provider,
		importer: accounts.NewImportUsersHandler(repo),
		logger:   logger,
		sessions: session.New(session.Config{
			KeyLookup:      "cookie:" + cfg.SessionCookieName,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "accounts",
		DisableStartupMessage: !cfg.Debug,
		PassLocalsToViews:     true,
		Views:                 engine,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(requestid.New())
	s.app.Use(recover.New())

	s.registerRoutes()

	return s
}

// App exposes the underlying fiber application, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the configured address.
func (s *Server) Listen() error {
	s.logger.Info("http server listening", "addr", s.cfg.HTTPAddr)
	return s.app.Listen(s.cfg.HTTPAddr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", s.apiLogin)
	auth.Get("/validate", s.requireUser, s.apiValidate)

	users := api.Group("/users", s.requireUser)
	users.Get("/", s.requireAdmin, s.apiUsersIndex)
	users.Post("/", s.requireAdmin, s.apiUsersCreate)
	users.Get("/:id", s.requireSelfOrAdmin, s.apiUsersShow)
	users.Patch("/:id", s.requireSelfOrAdmin, s.apiUsersUpdate)
	users.Put("/:id", s.requireSelfOrAdmin, s.apiUsersUpdate)
	users.Delete("/:id", s.requireAdmin, s.apiUsersDestroy)
	users.Post("/:id/restore", s.requireAdmin, s.apiUsersRestore)

	services := api.Group("/services", s.requireServiceKey)
	services.Get("/users", s.apiServiceUsersBatch)
	services.Post("/users/batch", s.apiServiceUsersBatch)
	services.Get("/users/:external_id", s.apiServiceUserShow)

	admin := s.app.Group("/admin")
	admin.Get("/login", s.adminLoginForm)
	admin.Post("/login", s.adminLogin)
	admin.Post("/logout", s.adminLogout)

	adminUsers := admin.Group("/users", s.requireAdminSession)
	adminUsers.Get("/", s.adminUsersIndex)
	adminUsers.Get("/new", s.adminUsersNew)
	adminUsers.Post("/", s.adminUsersCreate)
	adminUsers.Get("/import", s.adminImportForm)
	adminUsers.Post("/import", s.adminImportSubmit)
	adminUsers.Get("/:id", s.adminUsersShow)
	adminUsers.Get("/:id/edit", s.adminUsersEdit)
	adminUsers.Post("/:id", s.adminUsersUpdate)
	adminUsers.Post("/:id/delete", s.adminUsersDelete)
	adminUsers.Post("/:id/restore", s.adminUsersRestore)

	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/admin/users")
	})
}
