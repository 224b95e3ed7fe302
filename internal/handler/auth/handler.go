package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/service/auth"
	"github.com/medisync/hms-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	r.POST("/register", authMw.OptionalAuthenticate(), h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.Refresh)
	r.GET("/me", authMw.Authenticate(), h.Me)
}

// Register creates an account. Self-service registration is limited to the
// PATIENT role; staff accounts are created by an authenticated admin.
func (h *Handler) Register(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	if req.Role != model.RolePatient {
		claims, ok := middleware.GetClaims(c)
		if !ok || !authz.Can(claims.Role, authz.ActionManageUsers) {
			c.JSON(http.StatusForbidden, httputil.Response{
				Status:  "error",
				Message: "only admin can create staff accounts",
			})
			return
		}
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httputil.Response{Status: "error", Message: "missing authentication"})
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}
