package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/visit"
	"github.com/rodhonsys/saude-escolar-api/pkg/metrics"
)

type Handler struct {
	service *visit.Service
	metrics *metrics.Metrics
}

func NewHandler(service *visit.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.Create)
		visits.GET("", h.List)
		visits.GET("/:id", h.Get)
	}
	r.GET("/persons/:key/visits", h.ListByPerson)
	r.GET("/persons/:key/folder", h.Folder)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	record, err := h.service.Create(c.Request.Context(), acct, acct.TenantID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.metrics.VisitsCreated.WithLabelValues(record.VisitType).Inc()
	h.metrics.PersonsUpserts.Inc()
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit id"))
		return
	}

	acct := middleware.AccountFrom(c)
	record, err := h.service.Get(c.Request.Context(), acct.UID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) List(c *gin.Context) {
	var filters model.VisitFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	records, err := h.service.List(c.Request.Context(), acct.TenantID, &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) ListByPerson(c *gin.Context) {
	acct := middleware.AccountFrom(c)
	records, err := h.service.ListByPerson(c.Request.Context(), acct.UID, c.Param("key"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) Folder(c *gin.Context) {
	acct := middleware.AccountFrom(c)
	entries, err := h.service.Folder(c.Request.Context(), acct.UID, c.Param("key"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}
