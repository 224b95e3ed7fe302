package invoice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/service/invoice"
	"github.com/medisync/hms-api/pkg/httputil"
)

type Handler struct {
	service *invoice.Service
}

func NewHandler(service *invoice.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.ListInvoices)
	r.GET("/:id", h.GetInvoice)
	r.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	filters := &model.InvoiceFilters{}

	if status := c.Query("status"); status != "" {
		filters.Status = model.InvoiceStatus(status)
	}
	if id := c.Query("appointment_id"); id != "" {
		appointmentID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid appointment ID"})
			return
		}
		filters.AppointmentID = appointmentID
	}

	claims, _ := middleware.GetClaims(c)
	invoices, err := h.service.List(c.Request.Context(), claims, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, invoices)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid invoice ID"})
		return
	}

	claims, _ := middleware.GetClaims(c)
	inv, err := h.service.Get(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, inv)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid invoice ID"})
		return
	}

	var req model.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	inv, err := h.service.UpdateStatus(c.Request.Context(), claims, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, inv)
}
