package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/report"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/service"
	"github.com/fotoforma/backoffice/internal/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenses    *service.ExpenseService
	turmas      *service.TurmaService
	vendors     *service.VendorService
	events      *service.EventService
	briefings   *service.BriefingService
	sales       *service.SaleService
	engine      *workflow.Engine
	liquidation *workflow.LiquidationProcessor
	exporter    *report.Exporter
	attachments *repository.AttachmentRepository
	maxUpload   int64
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	expenses *service.ExpenseService,
	turmas *service.TurmaService,
	vendors *service.VendorService,
	events *service.EventService,
	briefings *service.BriefingService,
	sales *service.SaleService,
	engine *workflow.Engine,
	liquidation *workflow.LiquidationProcessor,
	exporter *report.Exporter,
	attachments *repository.AttachmentRepository,
	maxUploadMB int,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		expenses:    expenses,
		turmas:      turmas,
		vendors:     vendors,
		events:      events,
		briefings:   briefings,
		sales:       sales,
		engine:      engine,
		liquidation: liquidation,
		exporter:    exporter,
		attachments: attachments,
		maxUpload:   int64(maxUploadMB) * 1024 * 1024,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// actingUser reads the explicit acting-user headers. The second return is
// false when the request carries no usable identity; the response has
// already been written in that case.
func (h *Handlers) actingUser(c *gin.Context) (models.ActingUser, bool) {
	actor := models.ActingUser{
		ID:   c.GetHeader("X-User-ID"),
		Name: c.GetHeader("X-User-Name"),
		Role: c.GetHeader("X-User-Role"),
	}
	if actor.ID == "" || !models.ValidRole(actor.Role) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing or invalid X-User-ID / X-User-Role headers",
		})
		return models.ActingUser{}, false
	}
	if actor.Name == "" {
		actor.Name = actor.ID
	}
	return actor, true
}

// pathID parses the numeric :id path parameter.
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// fail maps domain errors to HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrAttachment):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handlers) created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}
