package bootstrap

import (
	"net/http"

	"bidops-backend/internal/config"
	"bidops-backend/internal/interfaces/router"
)

// New creates the HTTP handler for Vercel serverless (api handler imports this package, not internal).
func New() (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return router.Handler(app), nil
}
