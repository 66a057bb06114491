// Package handler is the serverless entry point: it serves the same Fiber app
// as cmd/server through net/http.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/demonyhq/demony/infra/initializer"
	"github.com/demonyhq/demony/pkg/app"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/webapi"
	oaerrors "github.com/go-openapi/errors"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	served  http.HandlerFunc
	initErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() { served, initErr = build() })
	if initErr != nil {
		slog.Error("failed to start", "error", initErr)
		oaerrors.ServeError(w, r, oaerrors.New(http.StatusServiceUnavailable, "service unavailable"))
		return
	}
	served.ServeHTTP(w, r)
}

// build wires the app once per instance; the DB pool is reused across
// invocations.
func build() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg))), nil
}
