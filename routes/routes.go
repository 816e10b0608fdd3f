package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/umesh2702/OUTLAW/apperrors"
	"github.com/umesh2702/OUTLAW/auth"
	"github.com/umesh2702/OUTLAW/controllers"
	middlewares "github.com/umesh2702/OUTLAW/middleware"
	"github.com/umesh2702/OUTLAW/repository"
	"github.com/umesh2702/OUTLAW/storage"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	DB *gorm.DB
	// KV holds cart documents; SessionKV holds token records and auth shadows
	// on the longer session TTL.
	KV          storage.KV
	SessionKV   storage.KV
	Provider    controllers.AuthProvider
	Sessions    *auth.SessionStore
	Events      controllers.SessionEvents
	Checkout    controllers.CheckoutPublisher
	Notifier    controllers.RegistrationNotifier
	JWTSecret   string
	RedirectURL string
	Log         *zap.Logger
}

// Register mounts all storefront routes.
func Register(r *gin.Engine, d Deps) {
	r.Use(apperrors.ErrorMiddleware())

	products := repository.NewProductRepository(d.DB)
	profiles := repository.NewProfileRepository(d.DB)

	productController := controllers.NewProductController(products, d.Log)
	cartController := controllers.NewCartController(d.KV, products, d.Checkout, d.Log)
	authController := &controllers.AuthController{
		Provider:    d.Provider,
		Profiles:    profiles,
		Sessions:    d.Sessions,
		Events:      d.Events,
		Notifier:    d.Notifier,
		KV:          d.SessionKV,
		RedirectURL: d.RedirectURL,
		Log:         d.Log,
	}

	catalog := r.Group("/products")
	{
		catalog.GET("/", productController.ListProducts)
		catalog.GET("/:id", productController.GetProduct)
	}

	cartRoutes := r.Group("/cart")
	cartRoutes.Use(middlewares.EnsureSession())
	{
		cartRoutes.GET("/", cartController.GetCart)
		cartRoutes.POST("/add", cartController.AddItem)
		cartRoutes.PATCH("/items/:product_id", cartController.UpdateQuantity)
		cartRoutes.DELETE("/remove/:product_id", cartController.RemoveItem)
		cartRoutes.DELETE("/clear", cartController.ClearCart)
		cartRoutes.POST("/checkout", middlewares.RequireAuth(d.JWTSecret), cartController.CheckoutRequest)
	}

	authRoutes := r.Group("/auth")
	authRoutes.Use(middlewares.EnsureSession(), middlewares.RateLimitMiddleware())
	{
		authRoutes.POST("/signup", authController.Signup)
		authRoutes.POST("/login", authController.Login)
		authRoutes.GET("/callback", authController.Callback)
		authRoutes.POST("/logout", authController.Logout)
		authRoutes.GET("/session", authController.Session)
	}
}
