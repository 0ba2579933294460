package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tsinling0525/flowsmith/config"
	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/infra"
	"github.com/Tsinling0525/flowsmith/logger"
	"github.com/Tsinling0525/flowsmith/model"
	_ "github.com/Tsinling0525/flowsmith/nodes/all"
	"github.com/Tsinling0525/flowsmith/validate"
)

// maxBodyBytes caps request bodies above the engine's own input limit so
// that oversized JSON still reaches the engine and is rejected there.
const maxBodyBytes = 1 << 20

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// BuildRequest carries raw model output to build from.
type BuildRequest struct {
	Input string `json:"input" binding:"required"`
	Save  bool   `json:"save"`
}

func sendResponse(c *gin.Context, statusCode int, success bool, data map[string]any, errorMsg string) {
	c.JSON(statusCode, APIResponse{Success: success, Data: data, Error: errorMsg})
}

func sendSuccess(c *gin.Context, data map[string]any) {
	sendResponse(c, http.StatusOK, true, data, "")
}

func sendError(c *gin.Context, statusCode int, errorMsg string) {
	sendResponse(c, statusCode, false, nil, errorMsg)
}

// Server serves the build pipeline over HTTP.
type Server struct {
	engine   *engine.Engine
	store    infra.DocumentStore
	registry *prometheus.Registry
	metrics  *metrics
	started  time.Time
}

// New returns a server. A nil store means an in-memory one.
func New(eng *engine.Engine, store infra.DocumentStore) *Server {
	if store == nil {
		store = infra.NewMemStore()
	}
	reg := prometheus.NewRegistry()
	return &Server{
		engine:   eng,
		store:    store,
		registry: reg,
		metrics:  newMetrics(reg),
		started:  time.Now(),
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	sendSuccess(c, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"version":   config.Version,
	})
}

func (s *Server) handleBuild(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	start := time.Now()
	res, err := s.engine.Build(c.Request.Context(), req.Input)
	s.metrics.observeBuild(res, err, time.Since(start))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrStructural) {
			status = http.StatusUnprocessableEntity
		}
		logger.LogWarn("build rejected", map[string]any{"input": res.Input, "error": err.Error()})
		sendError(c, status, err.Error())
		return
	}

	data := map[string]any{
		"workflow":          res.Document,
		"validation":        res.Validation,
		"initialValidation": res.Initial,
		"fixesApplied":      res.Fixes,
		"inputKind":         res.Input,
	}
	if c.Query("decisions") == "true" {
		data["decisions"] = res.Decisions
	}
	if req.Save {
		id, err := s.store.Save(c.Request.Context(), infra.StoredWorkflow{
			Score:    res.Validation.Score,
			IsValid:  res.Validation.IsValid,
			Document: res.Document,
		})
		if err != nil {
			logger.LogError("save workflow", err, map[string]any{"name": res.Document.Name})
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
		data["id"] = id
	}
	logger.LogInfo("workflow built", map[string]any{
		"name":  res.Document.Name,
		"nodes": len(res.Document.Nodes),
		"score": res.Validation.Score,
		"fixes": res.Fixes,
	})
	sendSuccess(c, data)
}

// handleValidate checks a submitted workflow document as-is. With
// ?repair=true it also returns the repaired document.
func (s *Server) handleValidate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := n8n.Decode(body)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	report := validate.Validate(doc, validate.Options{})
	s.metrics.observeValidation(report)
	data := map[string]any{"validation": report}
	if repair, _ := strconv.ParseBool(c.Query("repair")); repair {
		_, fixes := validate.Repair(doc, validate.Options{})
		data["workflow"] = doc
		data["fixesApplied"] = fixes
		data["repairedValidation"] = validate.Validate(doc, validate.Options{})
	}
	sendSuccess(c, data)
}

func (s *Server) handleList(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, map[string]any{"workflows": list, "count": len(list)})
}

func (s *Server) handleGet(c *gin.Context) {
	w, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	sendSuccess(c, map[string]any{"id": w.ID, "workflow": w.Document, "score": w.Score, "isValid": w.IsValid})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	sendSuccess(c, map[string]any{"id": c.Param("id"), "deleted": true})
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, infra.ErrNotFound) {
		sendError(c, http.StatusNotFound, err.Error())
		return
	}
	sendError(c, http.StatusInternalServerError, err.Error())
}

// requestLogger logs every request through the global zap logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.LogDebug("request", map[string]any{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		})
	}
}

// Router builds the Gin router with routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	})

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	wf := r.Group("/workflows")
	wf.POST("/build", s.handleBuild)
	wf.POST("/validate", s.handleValidate)
	wf.GET("", s.handleList)
	wf.GET("/:id", s.handleGet)
	wf.DELETE("/:id", s.handleDelete)
	return r
}
