package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func existing(id uuid.UUID, start, end time.Time, status model.AppointmentStatus) *model.Appointment {
	apt := &model.Appointment{
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	apt.ID = id
	return apt
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: at(10, 0), End: at(10, 30)}

	tests := []struct {
		name     string
		other    Interval
		overlaps bool
	}{
		{"identical", Interval{at(10, 0), at(10, 30)}, true},
		{"contained", Interval{at(10, 10), at(10, 20)}, true},
		{"containing", Interval{at(9, 0), at(11, 0)}, true},
		{"overlap start", Interval{at(9, 45), at(10, 15)}, true},
		{"overlap end", Interval{at(10, 15), at(10, 45)}, true},
		{"touching before", Interval{at(9, 30), at(10, 0)}, false},
		{"touching after", Interval{at(10, 30), at(11, 0)}, false},
		{"disjoint before", Interval{at(8, 0), at(9, 0)}, false},
		{"disjoint after", Interval{at(11, 0), at(12, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, base.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(base))
		})
	}
}

func TestCheckRejectsInvalidInterval(t *testing.T) {
	err := Check(nil, Interval{Start: at(10, 0), End: at(10, 0)}, nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	err = Check(nil, Interval{Start: at(10, 30), End: at(10, 0)}, nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCheckReportsConflict(t *testing.T) {
	blocking := uuid.New()
	booked := []*model.Appointment{
		existing(uuid.New(), at(9, 0), at(9, 30), model.AppointmentStatusScheduled),
		existing(blocking, at(10, 0), at(10, 30), model.AppointmentStatusScheduled),
	}

	err := Check(booked, Interval{Start: at(10, 15), End: at(10, 45)}, nil)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, blocking, conflict.AppointmentID)
}

func TestCheckAllowsTouchingIntervals(t *testing.T) {
	booked := []*model.Appointment{
		existing(uuid.New(), at(10, 0), at(10, 30), model.AppointmentStatusScheduled),
	}

	assert.NoError(t, Check(booked, Interval{Start: at(10, 30), End: at(11, 0)}, nil))
	assert.NoError(t, Check(booked, Interval{Start: at(9, 30), End: at(10, 0)}, nil))
}

func TestCheckCancelledStillBlocks(t *testing.T) {
	booked := []*model.Appointment{
		existing(uuid.New(), at(10, 0), at(10, 30), model.AppointmentStatusCancelled),
		existing(uuid.New(), at(11, 0), at(11, 30), model.AppointmentStatusNoShow),
	}

	err := Check(booked, Interval{Start: at(10, 0), End: at(10, 30)}, nil)
	assert.Error(t, err)

	err = Check(booked, Interval{Start: at(11, 15), End: at(11, 45)}, nil)
	assert.Error(t, err)
}

func TestCheckExcludesOwnID(t *testing.T) {
	ownID := uuid.New()
	booked := []*model.Appointment{
		existing(ownID, at(10, 0), at(10, 30), model.AppointmentStatusScheduled),
	}

	// An unchanged interval never conflicts with itself.
	err := Check(booked, Interval{Start: at(10, 0), End: at(10, 30)}, &ownID)
	assert.NoError(t, err)

	// Excluding one appointment does not hide the others.
	otherID := uuid.New()
	booked = append(booked, existing(otherID, at(10, 30), at(11, 0), model.AppointmentStatusScheduled))
	err = Check(booked, Interval{Start: at(10, 15), End: at(10, 45)}, &ownID)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, otherID, conflict.AppointmentID)
}

func TestCheckEmptySchedule(t *testing.T) {
	assert.NoError(t, Check(nil, Interval{Start: at(10, 0), End: at(10, 30)}, nil))
}
