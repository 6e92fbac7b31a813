package api

import (
	"net/http"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/metrics"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds what the routes need besides the services.
type RouterConfig struct {
	JWTSecret string
	// RateLimiter guards the public auth routes. Nil disables rate limiting.
	RateLimiter   RequestRateLimiter
	AuthPerMinute int
	Metrics       *metrics.Manager
	// Gatherer backs /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
}

type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Plans     service.TrainingPlanService
	Feedback  service.FeedbackService
	Templates service.TemplateService
	Calendar  service.CalendarService
	Dashboard service.DashboardService
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig, services Services) {
	authHandler := NewAuthHandler(services.Auth, services.Users)
	userHandler := NewUserHandler(services.Users)
	planHandler := NewTrainingPlanHandler(services.Plans)
	feedbackHandler := NewFeedbackHandler(services.Feedback)
	templateHandler := NewTemplateHandler(services.Templates)
	calendarHandler := NewCalendarHandler(services.Calendar, services.Dashboard)

	router.Use(PanicRecovery(cfg.Metrics), LogRequest(), RequestMetrics(cfg.Metrics))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	limit := func(route string) gin.HandlerFunc {
		if cfg.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return RateLimit(cfg.RateLimiter, route, cfg.AuthPerMinute, cfg.Metrics)
	}

	coachOnly := RoleMiddleware(domain.RoleCoach)
	athleteOnly := RoleMiddleware(domain.RoleAthlete)

	apiV1 := router.Group("/api/v1")

	// --- Public user routes ---
	public := apiV1.Group("/users")
	{
		public.POST("/register", limit("register"), authHandler.Register)
		public.GET("/activate/:token", authHandler.Activate)
		public.POST("/login", limit("login"), authHandler.Login)
		public.POST("/password-recovery", limit("password-recovery"), authHandler.PasswordRecovery)
		public.POST("/reset-password", authHandler.ResetPassword)
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(cfg.JWTSecret))

	// --- User routes ---
	users := protected.Group("/users")
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/profile/picture", userHandler.UpdateProfilePicture)
		users.GET("/me/coach", athleteOnly, userHandler.GetMyCoach)
		users.GET("/search/:email", coachOnly, userHandler.SearchAthlete)
		// :id is the coach here and the athlete on the routes below it.
		users.GET("/athletes/:id", coachOnly, userHandler.GetAthletes)
		users.PUT("/athletes/:id/link-coach", coachOnly, userHandler.LinkCoach)
		users.DELETE("/athletes/:id/coach", coachOnly, userHandler.UnlinkCoach)
		users.GET("/athlete/:athleteId", userHandler.GetAthlete)
	}

	// --- Training plan routes ---
	plans := protected.Group("/training-plans")
	{
		plans.GET("", planHandler.ListPlans)
		plans.POST("", coachOnly, planHandler.CreatePlan)
		plans.GET("/:id", planHandler.GetPlan)
		plans.GET("/:id/progress", planHandler.GetProgress)
		plans.PUT("/:id", coachOnly, planHandler.UpdatePlan)
		plans.DELETE("/:id", coachOnly, planHandler.DeletePlan)
		plans.POST("/:id/convert-to-template", coachOnly, planHandler.ConvertToTemplate)
		plans.PATCH("/:id/remove-template-status", coachOnly, planHandler.RemoveTemplateStatus)

		fb := plans.Group("/feedback", athleteOnly)
		{
			fb.POST("/exercise", feedbackHandler.SubmitExerciseFeedback)
			fb.PATCH("/exercise-sets", feedbackHandler.UpdateExerciseSets)
			fb.PATCH("/session-notes", feedbackHandler.UpdateSessionNotes)
		}
	}

	// --- Template routes ---
	templates := protected.Group("/templates")
	{
		templates.GET("", templateHandler.ListTemplates)
		templates.GET("/most-used", templateHandler.MostUsed)
		templates.GET("/:id", templateHandler.GetTemplate)
		templates.POST("", coachOnly, templateHandler.CreateTemplate)
		templates.POST("/from-plan", coachOnly, templateHandler.CreateFromPlan)
		templates.PATCH("/:id/increment-usage", coachOnly, templateHandler.IncrementUsage)
		templates.DELETE("/:id", coachOnly, templateHandler.DeleteTemplate)
	}

	protected.GET("/calendar/events", calendarHandler.GetEvents)
	protected.GET("/dashboard/athlete", athleteOnly, calendarHandler.AthleteDashboard)
	protected.GET("/dashboard/coach", coachOnly, calendarHandler.CoachDashboard)
}
