// Package api exposes the ration planner over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rationbook/internal/cache"
	"rationbook/internal/metrics"
	"rationbook/internal/models"
	"rationbook/internal/ration"
)

// RationService is the submit/read surface the handlers call.
type RationService interface {
	Upsert(ctx context.Context, req models.SubmitRequest) (ration.UpsertResult, error)
	Read(ctx context.Context, name, weekStart string) (ration.ReadResult, error)
}

// NamelistSource reads the list of valid submitter names.
type NamelistSource interface {
	ReadNamelist(ctx context.Context) ([][]string, error)
	NamelistCacheKey() string
}

type Handler struct {
	svc    RationService
	names  NamelistSource
	cache  *cache.TTLCache
	logger zerolog.Logger
}

func NewHandler(svc RationService, names NamelistSource, c *cache.TTLCache, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, names: names, cache: c, logger: logger}
}

// RegisterRoutes wires the planner endpoints onto a router group.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	rg.POST("/rations", h.SubmitRation)
	rg.GET("/rations", h.GetRation)
	rg.GET("/namelist", h.GetNamelist)
}

// SubmitRation handles POST /api/rations.
func (h *Handler) SubmitRation(c *gin.Context) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("submit", time.Since(start)) }()

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncSubmission("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.svc.Upsert(c.Request.Context(), req)
	if err != nil {
		var verr *ration.ValidationError
		if errors.As(err, &verr) {
			metrics.IncSubmission("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		metrics.IncSubmission("error")
		h.logger.Error().Err(err).Str("name", req.Name).Msg("submit ration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add ration"})
		return
	}

	metrics.IncSubmission("ok")
	metrics.AddRowsWritten("updated", res.Updated)
	metrics.AddRowsWritten("appended", res.Appended)

	c.JSON(http.StatusOK, models.SubmitResponse{
		OK:           true,
		WeekStart:    res.WeekStart,
		Name:         req.Name,
		RationType:   req.RationType,
		Updated:      res.Updated,
		Appended:     res.Appended,
		TotalWritten: res.Updated + res.Appended,
	})
}

// GetRation handles GET /api/rations?name=&weekStart=.
func (h *Handler) GetRation(c *gin.Context) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("read", time.Since(start)) }()

	name := c.Query("name")
	weekStart := c.Query("weekStart")

	res, err := h.svc.Read(c.Request.Context(), name, weekStart)
	if err != nil {
		var verr *ration.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error().Err(err).Str("name", name).Msg("get ration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rations"})
		return
	}

	c.JSON(http.StatusOK, models.ReadResponse{
		OK:         true,
		Name:       name,
		WeekStart:  res.WeekStart,
		RationType: res.RationType,
		Plan:       res.Plan,
	})
}

// GetNamelist handles GET /api/namelist. reload=true bypasses the cache read
// but still refreshes the entry afterwards.
func (h *Handler) GetNamelist(c *gin.Context) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("namelist", time.Since(start)) }()

	forceReload := c.Query("reload") == "true"
	cacheKey := h.names.NamelistCacheKey()

	if !forceReload {
		if cached, ok := h.cache.Get(cacheKey); ok {
			metrics.IncNamelistRequest("cache")
			c.JSON(http.StatusOK, models.NamelistResponse{Source: "cache", Rows: cached.([][]string)})
			return
		}
	}

	rows, err := h.names.ReadNamelist(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("namelist fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch namelist"})
		return
	}

	// Refresh the cache even on a forced reload.
	h.cache.Set(cacheKey, rows)

	source := "api"
	if forceReload {
		source = "api_forced"
	}
	metrics.IncNamelistRequest(source)
	c.JSON(http.StatusOK, models.NamelistResponse{Source: source, Rows: rows})
}
