// Package webapi provides the HTTP surface of the platform.
// It is organized into sub-packages per area:
// - auth: registration and login
// - user: profile, history and admin user management
// - payment, withdrawal: deposits, bot purchases and payouts
// - portfolio, copytrade, livetrade: the three ways money is put to work
// - kyc, market, admin: documents, catalog, dashboard and site settings
package webapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/amirasaad/axeria/pkg/middleware"
	adminweb "github.com/amirasaad/axeria/webapi/admin"
	authweb "github.com/amirasaad/axeria/webapi/auth"
	"github.com/amirasaad/axeria/webapi/common"
	copytradeweb "github.com/amirasaad/axeria/webapi/copytrade"
	kycweb "github.com/amirasaad/axeria/webapi/kyc"
	livetradeweb "github.com/amirasaad/axeria/webapi/livetrade"
	marketweb "github.com/amirasaad/axeria/webapi/market"
	paymentweb "github.com/amirasaad/axeria/webapi/payment"
	portfolioweb "github.com/amirasaad/axeria/webapi/portfolio"
	userweb "github.com/amirasaad/axeria/webapi/user"
	withdrawalweb "github.com/amirasaad/axeria/webapi/withdrawal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	cfg := app.Config
	authSvc := app.AuthService

	bodyLimit := 4 * 1024 * 1024
	if cfg.Storage != nil && cfg.Storage.MaxFileBytes > 0 {
		// multipart overhead on top of the largest accepted document
		bodyLimit = int(cfg.Storage.MaxFileBytes) + 64*1024
	}
	fiberApp := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
		OAuth2RedirectUrl:    "/auth/login",
	}))

	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.MaxRequests,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: clientIP,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(countRequests)

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Axeria API is running! 🚀")
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	admin := fiberApp.Group("/admin",
		middleware.JwtProtected(cfg.Auth.Jwt),
		middleware.RequireRole(user.RoleAdmin),
	)

	authweb.Routes(fiberApp, authSvc, app.UserService)
	userweb.Routes(fiberApp, admin, userweb.Services{
		Auth:        authSvc,
		User:        app.UserService,
		Ledger:      app.LedgerService,
		Transaction: app.TransactionService,
	}, cfg)
	paymentweb.Routes(fiberApp, admin, app.PaymentService, authSvc, cfg)
	withdrawalweb.Routes(fiberApp, admin, app.WithdrawalService, authSvc, cfg)
	portfolioweb.Routes(fiberApp, admin, portfolioweb.Services{
		Auth:      authSvc,
		Portfolio: app.PortfolioService,
		Payment:   app.PaymentService,
	}, cfg)
	copytradeweb.Routes(fiberApp, admin, app.CopyTradeService, authSvc, cfg)
	livetradeweb.Routes(fiberApp, admin, app.LiveTradeService, authSvc, cfg)
	kycweb.Routes(fiberApp, admin, app.KYCService, authSvc, cfg)
	marketweb.Routes(fiberApp, admin, app.MarketService)
	adminweb.Routes(admin, app.AdminService)
	return fiberApp
}

// clientIP keys the rate limiter. It uses X-Forwarded-For when behind a
// proxy, then X-Real-IP, then the socket address.
func clientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

func countRequests(c *fiber.Ctx) error {
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if err != nil && errors.As(err, &fe) {
		status = fe.Code
	}
	metrics.HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
	return err
}
