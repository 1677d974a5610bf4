package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MacJediWizard/flowcatalog/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CatalogReader defines the catalog listing operations served over HTTP.
type CatalogReader interface {
	ListProjects(ctx context.Context, application string, page, pageSize int) (*models.ProjectPage, error)
	ListFlows(ctx context.Context, application, project string, page, pageSize int) (*models.FlowPage, error)
	ListJobs(ctx context.Context, application, project string, flowID int64, page, pageSize int) (*models.JobPage, error)
}

// CatalogHandler handles flow catalog HTTP endpoints.
type CatalogHandler struct {
	reader CatalogReader
	logger zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(reader CatalogReader, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		reader: reader,
		logger: logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// RegisterRoutes registers catalog routes on the given router group.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	flows := r.Group("/flows")
	{
		flows.GET("/:application", h.ListProjects)
		flows.GET("/:application/:project", h.ListFlows)
		flows.GET("/:application/:project/:flow", h.ListJobs)
	}
}

// ListProjects returns one page of an application's projects.
// GET /api/v1/flows/:application
// Query params: page, size
func (h *CatalogHandler) ListProjects(c *gin.Context) {
	page, size, ok := parsePageParams(c)
	if !ok {
		return
	}

	application := c.Param("application")
	result, err := h.reader.ListProjects(c.Request.Context(), application, page, size)
	if err != nil {
		h.logger.Error().Err(err).Str("application", application).Msg("failed to list projects")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListFlows returns one page of a project's flows. The project "NA" lists
// flows without a group.
// GET /api/v1/flows/:application/:project
// Query params: page, size
func (h *CatalogHandler) ListFlows(c *gin.Context) {
	page, size, ok := parsePageParams(c)
	if !ok {
		return
	}

	application, project := c.Param("application"), c.Param("project")
	result, err := h.reader.ListFlows(c.Request.Context(), application, project, page, size)
	if err != nil {
		h.logger.Error().Err(err).
			Str("application", application).
			Str("project", project).
			Msg("failed to list flows")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list flows"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListJobs returns one page of a flow's jobs.
// GET /api/v1/flows/:application/:project/:flow
// Query params: page, size
func (h *CatalogHandler) ListJobs(c *gin.Context) {
	flowID, err := strconv.ParseInt(c.Param("flow"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flow ID"})
		return
	}

	page, size, ok := parsePageParams(c)
	if !ok {
		return
	}

	application, project := c.Param("application"), c.Param("project")
	result, err := h.reader.ListJobs(c.Request.Context(), application, project, flowID, page, size)
	if err != nil {
		h.logger.Error().Err(err).
			Str("application", application).
			Int64("flow_id", flowID).
			Msg("failed to list jobs")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// parsePageParams reads the optional page and size query params. Absent
// values are returned as 0 and resolved to defaults by the reader. On a
// malformed value it writes a 400 response and returns ok=false.
func parsePageParams(c *gin.Context) (page, size int, ok bool) {
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return 0, 0, false
		}
		page = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
			return 0, 0, false
		}
		size = n
	}
	return page, size, true
}
