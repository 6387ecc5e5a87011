package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppOptions controls how the Fiber application should behave on a specific port.
type AppOptions struct {
	Logger      *logrus.Logger
	Library     *Library
	ListenPort  int
	ReadTimeout time.Duration
}

const contextKeyRequestID = "_songcache_request_id"

// NewApp builds a Fiber application with request-ID middleware, structured
// error handling and the /-/datadirs listing backed by opts.Library. Song and
// parser routes are registered separately by the routes package.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Library == nil {
		return nil, errors.New("library is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ReadTimeout:   opts.ReadTimeout,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(string(c.Request().URI().Path())) {
			return c.Next()
		}
		return renderRouteUnknown(c, opts.Logger, opts.ListenPort)
	})

	library := opts.Library
	app.Get("/-/datadirs", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"datadirs": library.List()})
	})

	return app, nil
}

// requestIDMiddleware 为每个请求生成请求 ID 并写入响应头。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func renderRouteUnknown(c fiber.Ctx, logger *logrus.Logger, port int) error {
	logger.WithFields(logrus.Fields{
		"action":     "route_lookup",
		"path":       string(c.Request().URI().Path()),
		"port":       port,
		"request_id": RequestID(c),
	}).Warn("route unknown")

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "route_unknown",
	})
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
