package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/service/appointment"
	"github.com/medisync/hms-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.CreateAppointment)
	r.GET("", h.ListAppointments)
	r.GET("/:id", h.GetAppointment)
	r.PUT("/:id", h.RescheduleAppointment)
	r.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	apt, err := h.service.Create(c.Request.Context(), claims, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid appointment ID"})
		return
	}

	claims, _ := middleware.GetClaims(c)
	apt, err := h.service.Get(c.Request.Context(), claims, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid doctor ID"})
			return
		}
		filters.DoctorID = doctorID
	}
	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid patient ID"})
			return
		}
		filters.PatientID = patientID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid start_date"})
			return
		}
		filters.StartDate = t
	}
	if date := c.Query("end_date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid end_date"})
			return
		}
		filters.EndDate = t
	}

	claims, _ := middleware.GetClaims(c)
	appointments, err := h.service.List(c.Request.Context(), claims, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid appointment ID"})
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	apt, err := h.service.Reschedule(c.Request.Context(), claims, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: "invalid appointment ID"})
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{Status: "error", Message: err.Error()})
		return
	}

	claims, _ := middleware.GetClaims(c)
	apt, err := h.service.UpdateStatus(c.Request.Context(), claims, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}
