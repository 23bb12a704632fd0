package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/audit"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

// List returns the access trail for the caller's unit. Root may inspect
// any unit by passing tenant_id.
func (h *Handler) List(c *gin.Context) {
	var filters model.AuditFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	tenantID := acct.TenantID
	if acct.IsRoot() && c.Query("tenant_id") != "" {
		tenantID = c.Query("tenant_id")
	}

	logs, err := h.service.List(c.Request.Context(), tenantID, &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}
