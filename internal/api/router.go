// Package api exposes the storefront and the admin panels as a JSON API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/safar/go-storefront/internal/config"
)

type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       Pinger
	Redis    *redis.Client
	Verifier TokenVerifier
	Products ProductService
	Blogs    BlogService
	Cart     CartStore
	Profiles ProfileStore
	Orders   OrderStore
	Checkout CheckoutService
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(RequestID())
	r.Use(Logger(d.Logger))
	r.Use(Recovery(d.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(BodyLimit(d.Config.Server.MaxUploadBytes))

	r.GET("/health", health(d.DB))

	if d.Config.Storage.Driver == config.StorageDriverLocal {
		r.Static(d.Config.Storage.LocalURL, d.Config.Storage.LocalDir)
	}

	products := NewProductHandler(d.Products)
	blogs := NewBlogHandler(d.Blogs)
	cart := NewCartHandler(d.Cart)
	profile := NewProfileHandler(d.Profiles)
	orders := NewOrderHandler(d.Orders, d.Checkout)

	public := r.Group("/api")
	{
		public.GET("/products", products.ListActive)
		public.GET("/products/:id", products.GetActive)
		public.GET("/blogs", blogs.ListPublished)
		public.GET("/blogs/:id", blogs.GetPublished)
	}

	user := r.Group("/api")
	user.Use(AuthMiddleware(d.Verifier))
	{
		user.GET("/cart", cart.List)
		user.POST("/cart", cart.Add)
		user.PATCH("/cart/:id", cart.Update)
		user.DELETE("/cart/:id", cart.Remove)

		user.GET("/profile", profile.Get)
		user.PUT("/profile", profile.Update)

		checkout := []gin.HandlerFunc{orders.Checkout}
		if d.Redis != nil {
			limit := RateLimitMiddleware(d.Redis, d.Config.Redis.CheckoutLimit, d.Config.Redis.CheckoutWindow, d.Logger)
			checkout = append([]gin.HandlerFunc{limit}, checkout...)
		}
		user.POST("/checkout", checkout...)

		user.GET("/orders", orders.ListMine)
		user.GET("/orders/:id", orders.GetMine)
	}

	admin := r.Group("/api/admin")
	admin.Use(AuthMiddleware(d.Verifier), RequireAdmin(d.Profiles))
	{
		admin.GET("/products", products.List)
		admin.POST("/products", products.Create)
		admin.POST("/products/image", products.UploadImage)
		admin.GET("/products/:id", products.Get)
		admin.PUT("/products/:id", products.Update)
		admin.DELETE("/products/:id", products.Delete)

		admin.GET("/blogs", blogs.List)
		admin.POST("/blogs", blogs.Create)
		admin.GET("/blogs/:id", blogs.Get)
		admin.PUT("/blogs/:id", blogs.Update)
		admin.DELETE("/blogs/:id", blogs.Delete)

		admin.GET("/orders", orders.List)
		admin.PATCH("/orders/:id/status", orders.UpdateStatus)
	}

	return r
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
