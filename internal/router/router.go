// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/cache"
	"github.com/aurelle/aurelle-backend/internal/config"
	"github.com/aurelle/aurelle-backend/internal/handlers"
	"github.com/aurelle/aurelle-backend/internal/i18n"
	"github.com/aurelle/aurelle-backend/internal/middleware"
	"github.com/aurelle/aurelle-backend/internal/services"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

// Dependencies are the externally-initialized clients the router wires into
// services. Any of them may be nil in development; the owning service
// degrades gracefully.
type Dependencies struct {
	CatalogCache   *cache.Catalog
	Gateway        services.PaymentGateway
	Pusher         services.Pusher
	GoogleVerifier services.GoogleVerifier
}

func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg.AWS)
	catalogService := services.NewCatalogService(db, deps.CatalogCache)
	cartService := services.NewCartService(db)
	addressService := services.NewAddressService(db)
	couponService := services.NewCouponService(db)
	orderService := services.NewOrderService(db, deps.Gateway, couponService, cfg)
	paymentService := services.NewPaymentService(db, cfg.Razorpay)
	notificationService := services.NewNotificationService(db, deps.Pusher)
	authService := services.NewAuthService(db, cfg.JWT, deps.GoogleVerifier)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	couponHandler := handlers.NewCouponHandler(couponService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, notificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService)
	metaHandler := handlers.NewMetaHandler(catalogService, cfg.Frontend.BaseURL)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	if cfg.Environment == "production" {
		r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	} else {
		r.Use(middleware.CORS(nil))
	}
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"languages": i18n.GetSupportedLanguages(),
		})
	})

	// Crawler-facing surface
	r.GET("/sitemap.xml", metaHandler.Sitemap)
	r.GET("/robots.txt", metaHandler.Robots)
	r.GET("/manifest.webmanifest", metaHandler.Manifest)
	r.GET("/preview/products/:slug", metaHandler.ProductPreview)

	// Gateway webhooks live outside the versioned API; the gateway signs
	// them, so no session middleware applies.
	r.POST("/webhooks/razorpay", paymentHandler.RazorpayWebhook)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/google-token", authHandler.GoogleToken)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		// Profile routes
		profile := v1.Group("/profile")
		profile.Use(middleware.AuthRequired())
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", authHandler.UpdateProfile)
			profile.PUT("/password", authHandler.ChangePassword)
		}

		// Public catalog
		v1.GET("/categories", catalogHandler.ListCategories)
		v1.GET("/categories/:slug", catalogHandler.GetCategory)
		v1.GET("/products", catalogHandler.SearchProducts)
		v1.GET("/products/featured", catalogHandler.GetFeaturedProducts)
		v1.GET("/products/:slug", catalogHandler.GetProduct)

		// Cart
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.POST("/merge", cartHandler.MergeCart)
		}

		// Wishlist
		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", cartHandler.GetWishlist)
			wishlist.POST("/:productId", cartHandler.AddToWishlist)
			wishlist.DELETE("/:productId", cartHandler.RemoveFromWishlist)
			wishlist.POST("/:productId/move-to-cart", cartHandler.MoveToCart)
		}

		// Addresses
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.AuthRequired())
		{
			addresses.GET("", addressHandler.ListAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
		}

		// Coupons (validation is public so guests can price their cart)
		v1.POST("/coupons/validate", couponHandler.ValidateCoupon)

		// Orders
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.CheckoutRateLimit(), middleware.OptionalAuth(), orderHandler.CreateOrder)

			protected := orders.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("", orderHandler.ListOrders)
				protected.GET("/:id", orderHandler.GetOrder)
			}
		}

		// Payments
		v1.POST("/payments/verify", middleware.CheckoutRateLimit(), paymentHandler.VerifyPayment)

		// Push notification tokens
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.POST("/tokens", notificationHandler.RegisterToken)
			notifications.DELETE("/tokens", notificationHandler.UnregisterToken)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.SearchUsers)
				adminUsers.PUT("/:id/status", adminHandler.SetUserStatus)
			}

			adminCatalog := admin.Group("")
			{
				adminCatalog.POST("/categories", catalogHandler.CreateCategory)
				adminCatalog.PUT("/categories/:id", catalogHandler.UpdateCategory)
				adminCatalog.DELETE("/categories/:id", catalogHandler.DeleteCategory)
				adminCatalog.GET("/products", catalogHandler.AdminSearchProducts)
				adminCatalog.POST("/products", catalogHandler.CreateProduct)
				adminCatalog.PUT("/products/:id", catalogHandler.UpdateProduct)
				adminCatalog.DELETE("/products/:id", catalogHandler.DeleteProduct)
				adminCatalog.POST("/uploads/:slot", middleware.UploadRateLimit(), catalogHandler.UploadImage)
			}

			adminCoupons := admin.Group("/coupons")
			{
				adminCoupons.GET("", couponHandler.ListCoupons)
				adminCoupons.POST("", couponHandler.CreateCoupon)
				adminCoupons.PUT("/:id", couponHandler.UpdateCoupon)
				adminCoupons.DELETE("/:id", couponHandler.DeleteCoupon)
			}

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", orderHandler.AdminSearchOrders)
				adminOrders.GET("/:id", orderHandler.AdminGetOrder)
				adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			}

			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", notificationHandler.ListNotifications)
				adminNotifications.POST("", notificationHandler.SendNotification)
			}

			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
