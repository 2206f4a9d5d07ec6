package router

import (
	"errors"
	"net/http"

	approvalsvc "bidops-backend/internal/application/approvals"
	authsvc "bidops-backend/internal/application/auth"
	boqsvc "bidops-backend/internal/application/boq"
	fxsvc "bidops-backend/internal/application/fx"
	healthsvc "bidops-backend/internal/application/health"
	notifysvc "bidops-backend/internal/application/notifications"
	oppsvc "bidops-backend/internal/application/opportunities"
	pricingsvc "bidops-backend/internal/application/pricing"
	usersvc "bidops-backend/internal/application/users"
	"bidops-backend/internal/config"
	"bidops-backend/internal/infrastructure/database"
	approvalhandler "bidops-backend/internal/interfaces/handlers/approvals"
	authhandler "bidops-backend/internal/interfaces/handlers/auth"
	boqhandler "bidops-backend/internal/interfaces/handlers/boq"
	fxhandler "bidops-backend/internal/interfaces/handlers/fx"
	healthhandler "bidops-backend/internal/interfaces/handlers/health"
	notifyhandler "bidops-backend/internal/interfaces/handlers/notifications"
	opphandler "bidops-backend/internal/interfaces/handlers/opportunities"
	pricinghandler "bidops-backend/internal/interfaces/handlers/pricing"
	usershandler "bidops-backend/internal/interfaces/handlers/users"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp opens the database and Redis from cfg and builds the Fiber app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, errors.New("database URL is not configured")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return New(cfg, db, rdb), db, rdb, nil
}

// New wires middleware, services and routes onto a new Fiber app.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             healthsvc.GormPinger{DB: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	var sender notifysvc.EmailSender
	if cfg.SendinblueAPIKey != "" {
		sender = &notifysvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	notifier := &notifysvc.Service{DB: db, Sender: sender}

	api := app.Group("/api/v1", middleware.RequireAuth())
	view := middleware.AuthorizePermission(constants.ViewData)

	// Tenant users
	manageUsers := middleware.AuthorizePermission(constants.ManageUsers)
	uh := &usershandler.Handlers{Service: &usersvc.Service{DB: db, Rdb: rdb}}
	api.Get("/users", view, uh.List)
	api.Post("/users", manageUsers, uh.Create)
	api.Patch("/users/:id/role", manageUsers, uh.UpdateRole)

	// FX rates
	fxh := &fxhandler.Handlers{Service: &fxsvc.Service{DB: db}}
	api.Get("/fx-rates", view, fxh.List)
	api.Put("/fx-rates/:currency", middleware.AuthorizePermission(constants.ManageFx), fxh.Upsert)
	api.Delete("/fx-rates/:currency", middleware.AuthorizePermission(constants.ManageFx), fxh.Delete)

	// Clients and opportunities
	manageOpps := middleware.AuthorizePermission(constants.ManageOpportunities)
	oh := &opphandler.Handlers{Service: &oppsvc.Service{DB: db}}
	api.Get("/clients", view, oh.ListClients)
	api.Post("/clients", manageOpps, oh.CreateClient)
	api.Get("/opportunities", view, oh.List)
	api.Post("/opportunities", manageOpps, oh.Create)
	api.Get("/opportunities/:id", view, oh.Get)

	// BoQ
	managePricing := middleware.AuthorizePermission(constants.ManagePricing)
	bh := &boqhandler.Handlers{Service: &boqsvc.Service{DB: db, BaseCurrency: cfg.BaseCurrency}}
	api.Get("/opportunities/:id/boq", view, bh.List)
	api.Post("/opportunities/:id/boq", managePricing, bh.Create)
	api.Patch("/boq/:itemId", managePricing, bh.Update)
	api.Delete("/boq/:itemId", managePricing, bh.Delete)

	// Pricing packs
	ph := &pricinghandler.Handlers{Service: &pricingsvc.Service{
		DB: db,
		Options: pricingsvc.Options{
			MinMarginFraction: cfg.MinMarginFraction(),
			BaseCurrency:      cfg.BaseCurrency,
		},
	}}
	api.Post("/pricing/:opportunityId/pack/recalculate", managePricing, ph.Recalculate)
	api.Get("/pricing/:opportunityId/pack", view, ph.Current)
	api.Get("/pricing/:opportunityId/packs", view, ph.List)

	// Approvals. Static paths are registered before /:packId.
	manageApprovals := middleware.AuthorizePermission(constants.ManageApprovals)
	aph := &approvalhandler.Handlers{Service: &approvalsvc.Service{
		DB:       db,
		Notifier: notifier,
		Options:  approvalsvc.Options{SigningKey: []byte(cfg.ApprovalSigningKey)},
	}}
	api.Get("/approvals/review", view, aph.Review)
	api.Post("/approvals/decision/:id", aph.Decision)
	api.Get("/approvals/decision/:id/verify", view, aph.Verify)
	api.Post("/approvals/:packId/bootstrap", manageApprovals, aph.Bootstrap)
	api.Post("/approvals/:packId/finalize", manageApprovals, aph.Finalize)
	api.Get("/approvals/:packId", view, aph.List)

	// Notifications
	nh := &notifyhandler.Handlers{Service: notifier}
	api.Get("/notifications", nh.List)
	api.Patch("/notifications/:id/read", nh.MarkRead)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
