package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/account"
)

// Handler serves the root-only account administration endpoints.
type Handler struct {
	service *account.Service
}

func NewHandler(service *account.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	{
		accounts.POST("", h.Provision)
		accounts.GET("", h.List)
		accounts.GET("/:uid", h.Get)
		accounts.POST("/:uid/block", h.Block)
		accounts.POST("/:uid/unblock", h.Unblock)
		accounts.POST("/:uid/renew-license", h.RenewLicense)
	}
}

func (h *Handler) Provision(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.AccountFrom(c)
	acct, err := h.service.Provision(c.Request.Context(), actor.UID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(acct))
}

func (h *Handler) Get(c *gin.Context) {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	acct, err := h.service.Get(c.Request.Context(), uid)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(acct))
}

func (h *Handler) List(c *gin.Context) {
	var filters model.AccountFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	accts, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(accts))
}

func (h *Handler) Block(c *gin.Context) {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	actor := middleware.AccountFrom(c)
	if err := h.service.Block(c.Request.Context(), actor.UID, uid); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Unblock(c *gin.Context) {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	actor := middleware.AccountFrom(c)
	if err := h.service.Unblock(c.Request.Context(), actor.UID, uid); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RenewLicense(c *gin.Context) {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account id"))
		return
	}

	var req model.RenewLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.AccountFrom(c)
	acct, err := h.service.RenewLicense(c.Request.Context(), actor.UID, uid, req.Days)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(acct))
}
