package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/service/analytics"
	"github.com/medisync/hms-api/pkg/httputil"
)

type Handler struct {
	service *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
}

func (h *Handler) Dashboard(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	overview, err := h.service.Dashboard(c.Request.Context(), claims)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, overview)
}
