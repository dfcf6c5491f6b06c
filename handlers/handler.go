package handlers

import (
	"fmt"
	"net/http"

	"shuttle-store/internal/auth"
	"shuttle-store/internal/brands"
	"shuttle-store/internal/cart"
	"shuttle-store/internal/categories"
	"shuttle-store/internal/chat"
	"shuttle-store/internal/coupons"
	"shuttle-store/internal/orders"
	"shuttle-store/internal/payments"
	"shuttle-store/internal/products"
	"shuttle-store/internal/reviews"
	"shuttle-store/internal/settings"
	"shuttle-store/internal/stores/kafka"
	"shuttle-store/middleware"
	"shuttle-store/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	p         products.Conf
	cat       categories.Conf
	b         brands.Conf
	crt       cart.Conf
	cp        coupons.Conf
	o         *orders.Conf
	rv        reviews.Conf
	st        settings.Conf
	pay       *payments.Conf
	assistant *chat.Assistant
	// k is nil when Kafka is not configured; event publishing is skipped.
	k        *kafka.Conf
	validate *validator.Validate
}

type Deps struct {
	Products   products.Conf
	Categories categories.Conf
	Brands     brands.Conf
	Cart       cart.Conf
	Coupons    coupons.Conf
	Orders     *orders.Conf
	Reviews    reviews.Conf
	Settings   settings.Conf
	Payments   *payments.Conf
	Assistant  *chat.Assistant
	Kafka      *kafka.Conf
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		p:         d.Products,
		cat:       d.Categories,
		b:         d.Brands,
		crt:       d.Cart,
		cp:        d.Coupons,
		o:         d.Orders,
		rv:        d.Reviews,
		st:        d.Settings,
		pay:       d.Payments,
		assistant: d.Assistant,
		k:         d.Kafka,
		validate:  validator.New(),
	}
}

func API(endpointPrefix, ginMode string, keys *auth.Keys, d Deps) *gin.Engine {
	r := gin.New()
	if ginMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}
	h := NewHandler(d)

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	v1 := r.Group(endpointPrefix)
	{
		// Catalog and storefront content, open to everyone.
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/featured", h.ListFeaturedProducts)
		v1.GET("/products/slug/:slug", h.GetProductBySlug)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/products/:id/reviews", h.ListProductReviews)
		v1.GET("/categories", h.ListCategories)
		v1.GET("/categories/:id", h.GetCategory)
		v1.GET("/brands", h.ListBrands)
		v1.GET("/brands/:id", h.GetBrand)
		v1.GET("/banners", h.ListBanners)
		v1.GET("/settings", h.GetSettings)
		v1.GET("/payments/methods", h.ListPaymentMethods)
		v1.POST("/payments/webhook", h.PaymentWebhook)
		v1.POST("/chat", h.Chat)

		// Cart and checkout serve guests via the session header and
		// authenticated shoppers via their token.
		shop := v1.Group("")
		shop.Use(middleware.Session(), m.Identify())
		{
			shop.GET("/cart", h.GetCart)
			shop.POST("/cart/items", h.AddToCart)
			shop.PUT("/cart/items/:itemID", h.UpdateCartItem)
			shop.DELETE("/cart/items/:itemID", h.RemoveCartItem)
			shop.DELETE("/cart", h.ClearCart)
			shop.POST("/cart/sync-prices", h.SyncCartPrices)
			shop.POST("/coupons/validate", h.ValidateCoupon)
			shop.POST("/checkout", h.Checkout)
			shop.POST("/payments/checkout-session/:orderID", h.CreateCheckoutSession)
		}

		user := v1.Group("")
		user.Use(m.Authentication())
		{
			user.POST("/cart/merge", m.Authorize(h.MergeCart, auth.RoleUser))
			user.GET("/orders", m.Authorize(h.ListMyOrders, auth.RoleUser))
			user.GET("/orders/:id", m.Authorize(h.GetOrder, auth.RoleUser))
			user.POST("/orders/:id/cancel", m.Authorize(h.CancelOrder, auth.RoleUser))
			user.POST("/reviews", m.Authorize(h.CreateReview, auth.RoleUser))
		}

		admin := v1.Group("/admin")
		admin.Use(m.Authentication())
		{
			admin.POST("/products", m.Authorize(h.CreateProduct, auth.RoleAdmin))
			admin.PUT("/products/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
			admin.DELETE("/products/:id", m.Authorize(h.DeleteProduct, auth.RoleAdmin))

			admin.POST("/categories", m.Authorize(h.CreateCategory, auth.RoleAdmin))
			admin.PUT("/categories/:id", m.Authorize(h.UpdateCategory, auth.RoleAdmin))
			admin.DELETE("/categories/:id", m.Authorize(h.DeleteCategory, auth.RoleAdmin))

			admin.POST("/brands", m.Authorize(h.CreateBrand, auth.RoleAdmin))
			admin.PUT("/brands/:id", m.Authorize(h.UpdateBrand, auth.RoleAdmin))
			admin.DELETE("/brands/:id", m.Authorize(h.DeleteBrand, auth.RoleAdmin))

			admin.GET("/coupons", m.Authorize(h.ListCoupons, auth.RoleAdmin))
			admin.POST("/coupons", m.Authorize(h.CreateCoupon, auth.RoleAdmin))
			admin.PUT("/coupons/:id", m.Authorize(h.UpdateCoupon, auth.RoleAdmin))
			admin.DELETE("/coupons/:id", m.Authorize(h.DeleteCoupon, auth.RoleAdmin))

			admin.GET("/orders", m.Authorize(h.ListAllOrders, auth.RoleAdmin))
			admin.PATCH("/orders/:id/status", m.Authorize(h.UpdateOrderStatus, auth.RoleAdmin))

			admin.GET("/reviews", m.Authorize(h.ListReviewsForModeration, auth.RoleAdmin))
			admin.PATCH("/reviews/:id", m.Authorize(h.ModerateReview, auth.RoleAdmin))
			admin.DELETE("/reviews/:id", m.Authorize(h.DeleteReview, auth.RoleAdmin))

			admin.PUT("/settings", m.Authorize(h.UpdateSettings, auth.RoleAdmin))
			admin.POST("/banners", m.Authorize(h.CreateBanner, auth.RoleAdmin))
			admin.PUT("/banners/:id", m.Authorize(h.UpdateBanner, auth.RoleAdmin))
			admin.DELETE("/banners/:id", m.Authorize(h.DeleteBanner, auth.RoleAdmin))
		}
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
