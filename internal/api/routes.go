package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mkurbatov/coach-assistant/internal/service"
	"mkurbatov/coach-assistant/internal/store"
)

// SetupRoutes wires all handlers onto the router. The store is needed only
// for the health probe; everything else goes through the service.
func SetupRoutes(
	router *gin.Engine,
	st store.Store,
	coachService service.CoachService,
	webDir string,
) {
	coachHandler := NewCoachHandler(coachService)
	clientHandler := NewClientHandler(coachService)
	workoutHandler := NewWorkoutHandler(coachService)

	router.Use(RequestIDMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Liveness: probe the selected backend with a trivial query.
	router.GET("/health", func(c *gin.Context) {
		if err := st.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The companion web app, when deployed alongside the API.
	if webDir != "" {
		router.Static("/app", webDir)
	}

	apiV1 := router.Group("/api/v1")
	{
		// Registration is the one identity-free endpoint: it is how an
		// identity key becomes a coach in the first place.
		apiV1.POST("/coaches", coachHandler.RegisterCoach)
	}

	protected := apiV1.Group("")
	protected.Use(IdentityMiddleware(coachService))
	{
		protected.GET("/me", coachHandler.Me)
		protected.GET("/stats", coachHandler.Stats)

		clientGroup := protected.Group("/clients")
		{
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("", clientHandler.GetClients)
			clientGroup.GET("/:id", clientHandler.GetClient)
			clientGroup.PATCH("/:id", clientHandler.UpdateClient)
			clientGroup.DELETE("/:id", clientHandler.DeleteClient)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.GetWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id/status", workoutHandler.UpdateWorkoutStatus)
		}
	}
}
