// Package api exposes the extraction job controls over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"drivemeta/internal/app"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// Server binds HTTP handlers to an App instance.
type Server struct {
	app *app.App
}

func NewServer(a *app.App) *Server {
	return &Server{app: a}
}

// RegisterRoutes attaches all endpoints to the given engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", s.HealthCheck)

		// Job control endpoints
		api.POST("/extract", s.StartExtract)
		api.GET("/progress", s.GetProgress)
		api.POST("/pause", s.PauseJob)
		api.POST("/resume", s.ResumeJob)
		api.POST("/stop", s.StopJob)

		// Result endpoints
		api.GET("/results", s.GetResults)
		api.GET("/runs", s.ListRuns)
	}
}

// NewEngine builds a gin engine with all routes registered.
func NewEngine(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	NewServer(a).RegisterRoutes(r)
	return r
}
