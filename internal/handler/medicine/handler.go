package medicine

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/service/medicine"
	"github.com/medisync/hms-api/pkg/httputil"
)

type Handler struct {
	service *medicine.Service
}

func NewHandler(service *medicine.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateMedicine)
	r.GET("", h.ListMedicines)
	r.GET("/:id", h.GetMedicine)
	r.PUT("/:id", h.UpdateMedicine)
	r.DELETE("/:id", h.DeactivateMedicine)
}

func (h *Handler) RegisterSettingsRoutes(r *gin.RouterGroup) {
	r.GET("", h.GetSettings)
	r.PUT("", h.UpdateSettings)
}

func (h *Handler) CreateMedicine(c *gin.Context) {
	var req model.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	m, err := h.service.Create(c.Request.Context(), claims, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, m)
}

func (h *Handler) ListMedicines(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	medicines, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, medicines)
}

func (h *Handler) GetMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid medicine ID"})
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, m)
}

func (h *Handler) UpdateMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid medicine ID"})
		return
	}

	var req model.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	m, err := h.service.Update(c.Request.Context(), claims, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, m)
}

func (h *Handler) DeactivateMedicine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid medicine ID"})
		return
	}

	claims, _ := middleware.GetClaims(c)
	if err := h.service.Deactivate(c.Request.Context(), claims, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}

func (h *Handler) GetSettings(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	settings, err := h.service.GetSettings(c.Request.Context(), claims)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	settings, err := h.service.UpdateSettings(c.Request.Context(), claims, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, settings)
}
