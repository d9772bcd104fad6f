package handlers

import "github.com/gin-gonic/gin"

// Routes groups the handlers and middleware mounted by SetupRoutes
type Routes struct {
	Health     *HealthHandler
	Admin      *AdminHandler
	Settings   *SettingsHandler
	Newsletter *NewsletterHandler
	Plans      *PlanHandler

	// AdminAuth guards every /api/admin route except the bootstrap and login ones
	AdminAuth gin.HandlerFunc
	// AuthRateLimit throttles login and first-user registration
	AuthRateLimit gin.HandlerFunc
}

// SetupRoutes mounts the public and admin API on router
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", r.Health.HandleHealth)
	router.GET("/ready", r.Health.HandleReady)
	router.GET("/info", r.Health.HandleInfo)

	api := router.Group("/api")
	api.GET("/plans", r.Plans.HandleList)
	api.POST("/newsletter/subscribe", r.Newsletter.HandleSubscribe)
	api.POST("/newsletter/unsubscribe", r.Newsletter.HandleUnsubscribe)

	rateLimit := r.AuthRateLimit
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}

	// Bootstrap and login
	admin := api.Group("/admin")
	admin.GET("/check-first-user", r.Admin.HandleCheckFirstUser)
	admin.POST("/register-first-user", rateLimit, r.Admin.HandleRegisterFirstUser)
	admin.POST("/login", rateLimit, r.Admin.HandleAdminLogin)

	protected := admin.Group("")
	protected.Use(r.AdminAuth)
	protected.GET("/check-auth", r.Admin.HandleCheckAuth)
	protected.POST("/logout", r.Admin.HandleAdminLogout)

	r.Settings.RegisterRoutes(protected)

	protected.GET("/newsletter/subscribers", r.Newsletter.HandleListSubscribers)
	protected.DELETE("/newsletter/subscribers/:id", r.Newsletter.HandleDeleteSubscriber)
	protected.POST("/newsletter/send", r.Newsletter.HandleSend)

	protected.POST("/plans", r.Plans.HandleCreate)
	protected.PUT("/plans/:id", r.Plans.HandleUpdate)
	protected.DELETE("/plans/:id", r.Plans.HandleDelete)
}
