package person

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/person"
)

type Handler struct {
	service *person.Service
}

func NewHandler(service *person.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	persons := r.Group("/persons")
	{
		persons.POST("", h.Register)
		persons.GET("", h.List)
		persons.GET("/suggest", h.Suggest)
		persons.POST("/find", h.Find)
		persons.GET("/:key", h.Get)
	}
}

// Register merges the intake form into the keyed person record. The
// tenant is always the caller's own unit.
func (h *Handler) Register(c *gin.Context) {
	var req model.UpsertPersonRequest
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
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) Get(c *gin.Context) {
	acct := middleware.AccountFrom(c)
	record, err := h.service.Get(c.Request.Context(), acct.UID, c.Param("key"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

// Find recomputes the person key from raw intake fields; 404 means the
// person is new and the form starts blank.
func (h *Handler) Find(c *gin.Context) {
	var req model.PersonSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	record, err := h.service.Find(c.Request.Context(), acct.TenantID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) List(c *gin.Context) {
	var filters model.PersonFilters
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

func (h *Handler) Suggest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	acct := middleware.AccountFrom(c)
	records, err := h.service.Suggest(c.Request.Context(), acct.TenantID, c.Query("profile"), c.Query("name"), limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
