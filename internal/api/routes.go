package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {

	apiGroup := router.Group("/api")
	{
		// --- Site Generation ---
		apiGroup.POST("/generate-website", h.GenerateWebsite) // Full generate -> publish -> deploy run
		apiGroup.POST("/chat", h.Chat)                        // Conversational generation, no deployment

		// --- Session Store ---
		projectGroup := apiGroup.Group("/projects")
		{
			projectGroup.POST("/save", h.SaveProject)
			projectGroup.GET("/history/:userId", h.History)
		}
	}

	// --- Simple Health Check ---
	// Reports which outbound credentials are configured so a missing degrade
	// path is diagnosable without reading logs.
	router.GET("/health", h.Health)
}
