// Package scheduling decides whether a candidate appointment slot conflicts
// with a doctor's existing bookings. It is a pure pre-check over already
// fetched rows; the appointments table carries an exclusion constraint that
// remains the final arbiter under concurrent inserts.
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/model"
)

// ErrInvalidInterval is returned when the end time is not after the start.
var ErrInvalidInterval = errors.New("end_time must be greater than start_time")

// ConflictError reports an overlapping appointment for the same doctor.
type ConflictError struct {
	AppointmentID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("doctor has overlapping appointment %s", e.AppointmentID)
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Intervals that
// merely touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return other.Start.Before(i.End) && other.End.After(i.Start)
}

// Check validates the candidate interval against every existing appointment.
// Appointments are not filtered by status: cancelled and no-show slots still
// block the doctor's time, matching the live system. excludeID skips the
// appointment being rescheduled so it never conflicts with itself.
func Check(existing []*model.Appointment, candidate Interval, excludeID *uuid.UUID) error {
	if !candidate.Start.Before(candidate.End) {
		return ErrInvalidInterval
	}

	for _, apt := range existing {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if candidate.Overlaps(Interval{Start: apt.StartTime, End: apt.EndTime}) {
			return &ConflictError{AppointmentID: apt.ID}
		}
	}
	return nil
}
