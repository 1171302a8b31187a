package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"siteforge_server/internal/ai"
	"siteforge_server/internal/pipeline"
	"siteforge_server/internal/session"
	"siteforge_server/internal/types"
)

// chatMinLen is the chat surface's own validation threshold. It is smaller
// than pipeline.MinDescriptionLen on purpose: a short conversational turn is
// fine, a short provisioning description is not.
const chatMinLen = 3

// CredentialStatus feeds the health endpoint; each flag reports whether the
// matching outbound credential is configured.
type CredentialStatus struct {
	Generator bool `json:"generator"`
	Publisher bool `json:"publisher"`
	Trigger   bool `json:"trigger"`
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator   *ai.Generator
	provisioner *pipeline.Pipeline
	sessions    session.Store
	credentials CredentialStatus
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(gen *ai.Generator, provisioner *pipeline.Pipeline, sessions session.Store, credentials CredentialStatus) *APIHandler {
	return &APIHandler{
		generator:   gen,
		provisioner: provisioner,
		sessions:    sessions,
		credentials: credentials,
	}
}

// --- Structs for API Requests/Responses ---

type GenerateWebsiteRequest struct {
	Description string `json:"description" binding:"required"`
	UserID      string `json:"userId"`
}

type ChatRequest struct {
	Message  string          `json:"message" binding:"required"`
	Artifact *types.Artifact `json:"artifact"` // prior artifact for iterative refinement
}

type ChatResponse struct {
	AssistantMessage string         `json:"assistantMessage"`
	Artifact         types.Artifact `json:"artifact"`
}

type SaveProjectRequest struct {
	UserID   string         `json:"userId" binding:"required"`
	Name     string         `json:"name"`
	Artifact types.Artifact `json:"artifact" binding:"required"`
}

type SaveProjectResponse struct {
	ProjectID string `json:"projectId"`
}

type HistoryResponse struct {
	Projects []types.SavedProject `json:"projects"`
	Total    int                  `json:"total"`
}

// --- API Handlers ---

// POST /api/generate-website
func (h *APIHandler) GenerateWebsite(c *gin.Context) {
	var req GenerateWebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}
	log.Printf("Received generate-website request from user %s", userID)

	result := h.provisioner.Provision(c.Request.Context(), req.Description, userID)
	c.JSON(http.StatusOK, result)
}

// POST /api/chat
func (h *APIHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if len(strings.TrimSpace(req.Message)) < chatMinLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be at least 3 characters long"})
		return
	}

	assistant, result := h.generator.Chat(c.Request.Context(), req.Message, req.Artifact)
	if result.Degraded {
		log.Printf("Chat generation degraded (fields %v, cause %v)", result.DegradedFields, result.Cause)
	}
	c.JSON(http.StatusOK, ChatResponse{
		AssistantMessage: assistant,
		Artifact:         result.Artifact,
	})
}

// POST /api/projects/save
func (h *APIHandler) SaveProject(c *gin.Context) {
	var req SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	projectID, err := h.sessions.RecordProject(req.UserID, req.Artifact, req.Name)
	if err != nil {
		if errors.Is(err, session.ErrMissingUserID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}
		log.Printf("Error saving project for user %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save project"})
		return
	}

	log.Printf("Saved project %s for user %s", projectID, req.UserID)
	c.JSON(http.StatusCreated, SaveProjectResponse{ProjectID: projectID})
}

// GET /api/projects/history/:userId
func (h *APIHandler) History(c *gin.Context) {
	userID := c.Param("userId")

	limit := session.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	// A missing or unknown user yields an empty history, not an error.
	projects := h.sessions.History(userID, limit)
	c.JSON(http.StatusOK, HistoryResponse{
		Projects: projects,
		Total:    len(projects),
	})
}

// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"credentialsConfigured": h.credentials,
	})
}
