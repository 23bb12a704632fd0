package auth

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/internal/service/auth"
	"github.com/rodhonsys/saude-escolar-api/internal/service/monitor"
)

type Handler struct {
	service *auth.Service
	monitor *monitor.Service
}

func NewHandler(service *auth.Service, monitor *monitor.Service) *Handler {
	return &Handler{service: service, monitor: monitor}
}

// RegisterPublicRoutes mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

// RegisterProtectedRoutes mounts the endpoints that require a session.
// Change-password is the single route reachable while a password change
// is pending; the router marks it accordingly.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/change-password", h.ChangePassword)
		authGroup.GET("/me", h.Me)
	}
}

// RegisterWatchRoute mounts the SSE session stream. The router keeps it
// on a group without the request timeout so the stream can outlive it.
func (h *Handler) RegisterWatchRoute(r *gin.RouterGroup) {
	r.GET("/auth/session/watch", h.WatchSession)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Logout(c *gin.Context) {
	acct := middleware.AccountFrom(c)
	if err := h.service.Logout(c.Request.Context(), acct.UID); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	acct := middleware.AccountFrom(c)
	if err := h.service.ChangePassword(c.Request.Context(), acct.UID, &req); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// Me returns the authenticated account, which the client uses to build
// its sidebar from SidebarModules.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(middleware.AccountFrom(c)))
}

// WatchSession streams live session verdicts over SSE. The client signs
// out when it receives force_sign_out; the stream ends when the client
// disconnects.
func (h *Handler) WatchSession(c *gin.Context) {
	acct := middleware.AccountFrom(c)
	claims := middleware.ClaimsFrom(c)

	signals, err := h.monitor.Watch(c.Request.Context(), acct, claims.SessionID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case sig, ok := <-signals:
			if !ok {
				return false
			}
			c.SSEvent("session", sig)
			return !sig.ForceSignOut
		}
	})
}
