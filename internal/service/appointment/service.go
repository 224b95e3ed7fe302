package appointment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	"github.com/medisync/hms-api/internal/scheduling"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

// DashboardCache is implemented by the analytics service; appointment writes
// invalidate the cached overview so the status counts stay current.
type DashboardCache interface {
	InvalidateDashboard()
}

type Service struct {
	repo      repository.AppointmentRepository
	doctors   repository.DoctorRepository
	patients  repository.PatientRepository
	dashboard DashboardCache
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	dashboard DashboardCache,
) *Service {
	return &Service{
		repo:      repo,
		doctors:   doctors,
		patients:  patients,
		dashboard: dashboard,
	}
}

// Create books an appointment. The scheduling guard runs as an optimistic
// pre-check over the doctor's existing appointments; the exclusion constraint
// on the appointments table catches the races it cannot see, and the repo
// reports both as the same conflict error.
func (s *Service) Create(ctx context.Context, claims *model.TokenClaims, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !authz.Can(claims.Role, authz.ActionCreateAppointment) {
		return nil, apperrors.Forbidden("only admin or patient can create appointments")
	}

	patientID := req.PatientID
	if claims.Role == model.RolePatient {
		patient, err := s.patients.GetByUserID(ctx, claims.UserID)
		if err != nil {
			return nil, apperrors.BadRequest("patient profile is required", err)
		}
		patientID = patient.ID
	}
	if patientID == uuid.Nil {
		return nil, apperrors.BadRequest("patient_id is required", nil)
	}

	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, req.DoctorID, scheduling.Interval{Start: req.StartTime, End: req.EndTime}, nil); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Status:    model.AppointmentStatusScheduled,
	}
	if err := s.repo.Create(ctx, apt, lifecycleEvents(model.EventAppointmentCreated, apt)...); err != nil {
		return nil, err
	}

	s.invalidateDashboard()
	return apt, nil
}

func (s *Service) Get(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ctx, claims, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// List returns appointments visible to the caller: admins see everything,
// doctors and patients only their own.
func (s *Service) List(ctx context.Context, claims *model.TokenClaims, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	switch claims.Role {
	case model.RoleAdmin:
	case model.RoleDoctor:
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		filters.DoctorID = doctor.ID
	case model.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		filters.PatientID = patient.ID
	default:
		return []*model.Appointment{}, nil
	}

	return s.repo.List(ctx, filters)
}

// Reschedule moves an appointment to a new interval, excluding the
// appointment itself from the conflict check so an unchanged interval never
// conflicts with itself.
func (s *Service) Reschedule(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(ctx, claims, apt); err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.checkConflicts(ctx, apt.DoctorID, scheduling.Interval{Start: apt.StartTime, End: apt.EndTime}, &apt.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, apt, lifecycleEvents(model.EventAppointmentUpdated, apt)...); err != nil {
		return nil, err
	}
	return apt, nil
}

// UpdateStatus mutates the lifecycle status. Appointments are never deleted
// by the normal flow; cancellation is a status change.
func (s *Service) UpdateStatus(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	if !authz.Can(claims.Role, authz.ActionUpdateAppointment) {
		return nil, apperrors.Forbidden("only assigned doctor or admin can update status")
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(ctx, claims, apt); err != nil {
		return nil, err
	}

	apt.Status = req.Status
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, apt, lifecycleEvents(model.EventAppointmentUpdated, apt)...); err != nil {
		return nil, err
	}

	s.invalidateDashboard()
	return apt, nil
}

func (s *Service) invalidateDashboard() {
	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard()
	}
}

func (s *Service) checkConflicts(ctx context.Context, doctorID uuid.UUID, candidate scheduling.Interval, excludeID *uuid.UUID) error {
	existing, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("failed to fetch doctor appointments: %w", err)
	}
	return scheduling.Check(existing, candidate, excludeID)
}

func (s *Service) authorizeAccess(ctx context.Context, claims *model.TokenClaims, apt *model.Appointment) error {
	switch claims.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err == nil && doctor.ID == apt.DoctorID {
			return nil
		}
	case model.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, claims.UserID)
		if err == nil && patient.ID == apt.PatientID {
			return nil
		}
	}
	return apperrors.Forbidden("not allowed to access this appointment")
}

func (s *Service) authorizeMutation(ctx context.Context, claims *model.TokenClaims, apt *model.Appointment) error {
	if claims.Role == model.RoleAdmin {
		return nil
	}
	if claims.Role == model.RoleDoctor {
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err == nil && doctor.ID == apt.DoctorID {
			return nil
		}
	}
	return apperrors.Forbidden("only assigned doctor or admin can modify this appointment")
}

// lifecycleEvents builds the outbox event that rides the repository
// transaction, so the event commits with the appointment it describes.
func lifecycleEvents(eventType string, apt *model.Appointment) []*model.OutboxEvent {
	payload, err := json.Marshal(apt)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal appointment event")
		return nil
	}
	return []*model.OutboxEvent{{EventType: eventType, Payload: payload}}
}
