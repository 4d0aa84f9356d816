package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vedanttapdiya/vt-portfolio/internal/handlers"
	"github.com/vedanttapdiya/vt-portfolio/internal/metrics"
)

func SetupRoutes(
	r *gin.Engine,
	turnstileHandler *handlers.TurnstileHandler,
	contactHandler *handlers.ContactHandler,
	tokenHandler *handlers.TokenHandler,
	resumeHandler *handlers.ResumeHandler, // may be nil when no profile is configured
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/turnstile-config", turnstileHandler.GetConfig)
		api.POST("/verify-turnstile", turnstileHandler.Verify)
		api.POST("/contact", contactHandler.Submit)
		api.GET("/csrf-token", tokenHandler.Issue)
		if resumeHandler != nil {
			api.GET("/resume", resumeHandler.Download)
		}
	}

	return r
}
