// Package handler maps HTTP routes onto the status service.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vscode-status-server/internal/langicon"
	"vscode-status-server/internal/service"
)

type StatusHandler struct {
	Service *service.StatusService
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func (h *StatusHandler) TriggerRateLimit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "This endpoint can be used to test the rate limiter. It is limited to 1 request per minute."})
}

func (h *StatusHandler) Register(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data provided"})
		return
	}

	userID, _ := body["userId"].(string)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}

	err := h.Service.Register(c.Request.Context(), userID, token)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_id": userID})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: register %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *StatusHandler) Update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data provided"})
		return
	}

	userID, _ := body["userId"].(string)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}

	// Everything but the user id is the status document.
	statusData := make(map[string]any, len(body))
	for k, v := range body {
		if k != "userId" {
			statusData[k] = v
		}
	}

	err := h.Service.Update(c.Request.Context(), userID, token, statusData)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "user_id": userID})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found: Please register first before updating status"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed: Invalid user ID or token"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: update %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *StatusHandler) Get(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "`userId` URL parameter is required"})
		return
	}

	view, err := h.Service.Read(c.Request.Context(), userID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, view)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: get status %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *StatusHandler) Exists(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	exists, err := h.Service.Exists(c.Request.Context(), userID)
	switch {
	case err == nil && exists:
		c.JSON(http.StatusOK, gin.H{"exists": true})
	case err == nil:
		c.JSON(http.StatusNotFound, gin.H{"exists": false})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: exists %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *StatusHandler) Delete(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON data provided"})
		return
	}

	userID, _ := body["userId"].(string)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}

	err := h.Service.Delete(c.Request.Context(), userID, token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed: Invalid user ID or token"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handler: delete %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// LanguageIcon resolves the icon URL for a language or file name so clients
// do not have to ship the mapping themselves.
func (h *StatusHandler) LanguageIcon(c *gin.Context) {
	language := c.Query("language")
	fileName := c.Query("fileName")
	if language == "" && fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language or fileName URL parameter is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"icon_url": langicon.URL(language, fileName)})
}
