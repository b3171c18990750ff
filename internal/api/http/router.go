package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/http/handlers"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/auth"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Orders  *handlers.OrdersHandler
	Catalog *handlers.CatalogHandler
	Gate    *auth.Gate
	Metrics *observability.Metrics
	Auth    config.AuthConfig
	Upload  config.UploadConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	if cfg.Upload.Driver == config.UploadDriverLocal && cfg.Upload.PublicPrefix != "" {
		app.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)
	}

	jwt := cfg.Gate.Authenticate()
	jwtAllowExpired := cfg.Gate.Authenticate(auth.AllowExpiredToken())
	admin := auth.RequireRole(domain.RoleAdmin)

	user := app.Group("/user")
	user.Post("/", cfg.Users.Register)
	user.Post("/login", RateLimit(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst), cfg.Gate.LoginHandler(), cfg.Users.Login)
	user.Patch("/extend", jwtAllowExpired, cfg.Users.Extend)
	user.Get("/profile", jwt, cfg.Users.Profile)
	user.Delete("/logout", jwtAllowExpired, cfg.Users.Logout)
	user.Patch("/password", jwt, cfg.Users.ChangePassword)
	user.Patch("/cart", jwt, cfg.Users.EditCart)
	user.Get("/cart", jwt, cfg.Users.GetCart)

	order := app.Group("/order")
	order.Post("/", jwt, cfg.Orders.Create)
	order.Get("/", jwt, cfg.Orders.List)
	order.Get("/all", jwt, admin, cfg.Orders.ListAll)

	product := app.Group("/product")
	product.Post("/", jwt, admin, cfg.Catalog.CreateProduct)
	product.Get("/", cfg.Catalog.ListListedProducts)
	product.Get("/all", jwt, admin, cfg.Catalog.ListProducts)
	product.Get("/:id", cfg.Catalog.GetProduct)
	product.Patch("/:id", jwt, admin, cfg.Catalog.UpdateProduct)

	service := app.Group("/service")
	service.Post("/", jwt, admin, cfg.Catalog.CreateService)
	service.Get("/all", jwt, admin, cfg.Catalog.ListServices)
	service.Get("/:id", cfg.Catalog.GetService)
	service.Patch("/:id", jwt, admin, cfg.Catalog.UpdateService)

	worship := app.Group("/online-worship")
	worship.Post("/", jwt, cfg.Catalog.CreateWorship)
	worship.Get("/", cfg.Catalog.ListWorships(-1))
	worship.Get("/all", jwt, cfg.Catalog.ListWorships(10))
	worship.Get("/:id", cfg.Catalog.GetWorship)
	worship.Patch("/:id", jwt, cfg.Catalog.UpdateWorship)
}
