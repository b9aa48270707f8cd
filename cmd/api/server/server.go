package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apiinfra "github.com/Tsinling0525/synapse/infra/api"
	"github.com/Tsinling0525/synapse/model"
)

// CreateWorkflowRequest is the wire shape accepted by POST /api/v1/workflows.
type CreateWorkflowRequest struct {
	Metadata model.Metadata `json:"metadata"`
	Spec     struct {
		Versions []apiinfra.StoredVersion `json:"versions"`
	} `json:"spec"`
}

// Options configure the development API.
type Options struct {
	// Token, when set, is required as a bearer token on /api routes.
	Token string
}

type handler struct {
	store *apiinfra.WorkflowStore
}

// Helper function to send an error body
func sendError(c *gin.Context, statusCode int, errorMsg string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"error": errorMsg})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Unix()})
}

func (h *handler) create(c *gin.Context) {
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Metadata.Name) == "" {
		sendError(c, http.StatusBadRequest, "metadata.name is required")
		return
	}
	if req.Metadata.Namespace == "" {
		req.Metadata.Namespace = "default"
	}
	if len(req.Spec.Versions) == 0 {
		sendError(c, http.StatusBadRequest, "spec.versions must not be empty")
		return
	}
	for _, v := range req.Spec.Versions {
		if !isObject(v.Document) {
			sendError(c, http.StatusBadRequest, "spec.versions["+v.Name+"].document must be an object")
			return
		}
	}

	stored, err := h.store.Create(apiinfra.StoredWorkflow{Metadata: req.Metadata, Versions: req.Spec.Versions})
	if errors.Is(err, apiinfra.ErrExists) {
		sendError(c, http.StatusConflict, "workflow "+req.Metadata.Namespace+"/"+req.Metadata.Name+" already exists")
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (h *handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workflows": h.store.List()})
}

func (h *handler) get(c *gin.Context) {
	wf, ok := h.store.Get(c.Param("namespace"), c.Param("name"))
	if !ok {
		sendError(c, http.StatusNotFound, "workflow not found")
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *handler) delete(c *gin.Context) {
	if !h.store.Delete(c.Param("namespace"), c.Param("name")) {
		sendError(c, http.StatusNotFound, "workflow not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}

func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			sendError(c, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		c.Next()
	}
}

// NewRouter builds the Gin router with routes and middleware
func NewRouter(store *apiinfra.WorkflowStore, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	h := &handler{store: store}
	r.GET("/health", handleHealth)

	v1 := r.Group("/api/v1", bearerAuth(opts.Token))
	{
		v1.POST("/workflows", h.create)
		v1.GET("/workflows", h.list)
		v1.GET("/workflows/:namespace/:name", h.get)
		v1.DELETE("/workflows/:namespace/:name", h.delete)
	}
	return r
}
