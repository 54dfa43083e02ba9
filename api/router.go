package api

import (
	"time"

	"streetkitchen/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a gin engine. An empty corsOrigins
// list allows any origin.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.PrometheusMiddleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: len(corsOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(corsOrigins) > 0 {
		corsCfg.AllowOrigins = corsOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/notifications/circuits", h.CircuitStatus)

	r.GET("/vendors", h.ListVendors)
	r.POST("/vendors", h.CreateVendor)
	vendors := r.Group("/vendors/:code")
	{
		vendors.GET("/menu", h.Menu)
		vendors.POST("/menu-items", h.AddMenuItem)
		vendors.PATCH("/menu-items/:id", h.SetMenuItemAvailability)
		vendors.POST("/combos", h.AddCombo)
		vendors.POST("/combo-rules", h.AddComboRule)
		vendors.GET("/suggestions", h.Suggestions)
		vendors.POST("/quote", h.Quote)
		vendors.POST("/orders", h.PlaceOrder)
		vendors.GET("/orders", h.VendorOrders)
		vendors.GET("/stats", h.DailyStats)
		vendors.POST("/custom-combos", h.CreateCustomCombo)
	}

	r.DELETE("/combo-rules/:id", h.DeactivateComboRule)
	r.GET("/custom-combos/:id/validation", h.ValidateCustomCombo)

	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.GET("/orders/:id/tracking", h.OrderTracking)

	return r
}
