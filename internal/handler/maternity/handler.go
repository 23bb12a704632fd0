package maternity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/maternity"
)

type Handler struct {
	service *maternity.Service
}

func NewHandler(service *maternity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/maternity")
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
		records.POST("/:id/close", h.Close)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateMaternityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	record, err := h.service.Register(c.Request.Context(), acct.UID, acct.TenantID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid maternity record id"))
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
	var filters model.MaternityFilters
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

func (h *Handler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid maternity record id"))
		return
	}

	acct := middleware.AccountFrom(c)
	if err := h.service.Close(c.Request.Context(), acct.UID, id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
