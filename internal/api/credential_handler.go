package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"postureai/internal"
	"postureai/internal/keypool"
	"postureai/ports"
)

// CredentialHandler exposes the admin surface for the credential pool
type CredentialHandler struct {
	pool      *keypool.Pool
	llmClient ports.LLMClient
	testModel string
	log       *internal.Logger
}

// NewCredentialHandler creates a credential handler. Live key probes use
// testModel for the minimal completion.
func NewCredentialHandler(pool *keypool.Pool, llmClient ports.LLMClient, testModel string, log *internal.Logger) *CredentialHandler {
	return &CredentialHandler{
		pool:      pool,
		llmClient: llmClient,
		testModel: testModel,
		log:       log.Component("CredentialHandler"),
	}
}

// ListCredentials returns every credential with masked key material
func (h *CredentialHandler) ListCredentials(c *gin.Context) {
	creds, err := h.pool.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list credentials: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"credentials": creds})
}

type addCredentialRequest struct {
	Label     string `json:"label" binding:"required"`
	APIKey    string `json:"api_key" binding:"required"`
	CreatedBy string `json:"created_by"`
}

// AddCredential encrypts and stores a new provider key
func (h *CredentialHandler) AddCredential(c *gin.Context) {
	var req addCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label and api_key are required"})
		return
	}

	cred, err := h.pool.Add(c.Request.Context(), req.Label, req.APIKey, req.CreatedBy)
	if err != nil {
		h.log.Error("failed to add credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add credential"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": cred.ID, "label": cred.Label})
}

type toggleCredentialRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ToggleCredential activates or deactivates a credential. Reactivating
// clears its error count and cooldown.
func (h *CredentialHandler) ToggleCredential(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}

	var req toggleCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	if err := h.pool.Toggle(c.Request.Context(), id, *req.Active); err != nil {
		h.log.Error("failed to toggle credential %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update credential"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "active": *req.Active})
}

// DeleteCredential removes a credential permanently
func (h *CredentialHandler) DeleteCredential(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}

	if err := h.pool.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("failed to delete credential %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete credential"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// TestCredential probes a stored credential against the provider
func (h *CredentialHandler) TestCredential(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credential ID"})
		return
	}

	result, err := h.pool.TestStored(c.Request.Context(), h.llmClient, h.testModel, id)
	if err != nil {
		h.log.Error("failed to test credential %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to test credential"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type testKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// TestRawKey probes an unstored key, used before adding it to the pool
func (h *CredentialHandler) TestRawKey(c *gin.Context) {
	var req testKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}
	c.JSON(http.StatusOK, h.pool.Test(c.Request.Context(), h.llmClient, h.testModel, req.APIKey))
}

// Diagnostics reports pool health: key material, store reachability and
// per-credential availability.
func (h *CredentialHandler) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.pool.Diagnostics(c.Request.Context()))
}
