package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qr_attendance/internal/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func ev(action models.TimeTrackingAction, ts time.Time) models.TimeTrackingEvent {
	return models.TimeTrackingEvent{Action: action, Timestamp: ts}
}

func TestComputeWorkHours(t *testing.T) {
	tests := []struct {
		name      string
		events    []models.TimeTrackingEvent
		wantHours float64
		wantDays  int
		wantPairs int
	}{
		{name: "no events", wantPairs: 0},
		{
			name:      "single pair",
			events:    []models.TimeTrackingEvent{ev(models.ActionEntry, at(8, 0)), ev(models.ActionExit, at(16, 30))},
			wantHours: 8.5, wantDays: 1, wantPairs: 1,
		},
		{
			name: "unsorted input",
			events: []models.TimeTrackingEvent{
				ev(models.ActionExit, at(12, 0)), ev(models.ActionExit, at(18, 0)),
				ev(models.ActionEntry, at(13, 0)), ev(models.ActionEntry, at(8, 0)),
			},
			wantHours: 9, wantDays: 1, wantPairs: 2,
		},
		{
			name:      "exit before entry is skipped",
			events:    []models.TimeTrackingEvent{ev(models.ActionExit, at(7, 0)), ev(models.ActionEntry, at(8, 0)), ev(models.ActionExit, at(9, 0))},
			wantHours: 1, wantDays: 1, wantPairs: 1,
		},
		{
			name:      "exit equal to entry is not consumed",
			events:    []models.TimeTrackingEvent{ev(models.ActionEntry, at(8, 0)), ev(models.ActionExit, at(8, 0)), ev(models.ActionExit, at(10, 0))},
			wantHours: 2, wantDays: 1, wantPairs: 1,
		},
		{
			name:      "dangling entry ignored",
			events:    []models.TimeTrackingEvent{ev(models.ActionEntry, at(8, 0)), ev(models.ActionExit, at(9, 0)), ev(models.ActionEntry, at(10, 0))},
			wantHours: 1, wantDays: 1, wantPairs: 1,
		},
		{
			name: "two days",
			events: []models.TimeTrackingEvent{
				ev(models.ActionEntry, at(8, 0)), ev(models.ActionExit, at(12, 0)),
				ev(models.ActionEntry, at(8, 0).AddDate(0, 0, 1)), ev(models.ActionExit, at(10, 20).AddDate(0, 0, 1)),
			},
			wantHours: 6.3, wantDays: 2, wantPairs: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWorkHours(tt.events)
			assert.Equal(t, tt.wantHours, got.TotalHours)
			assert.Equal(t, tt.wantDays, got.DaysWorked)
			assert.Len(t, got.Periods, tt.wantPairs)
		})
	}
}

func TestNextActionAlternates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.employees.CreateEmployee(ctx, &models.RegisteredEmployee{ID: "E1", Name: "Alice", Email: "alice@example.com", CompanyID: "C1"})
	require.NoError(t, err)

	next, err := env.ledger.NextAction(ctx, "E1", "C1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionEntry, next)

	sequence := []models.TimeTrackingAction{models.ActionEntry, models.ActionExit, models.ActionEntry, models.ActionExit}
	for i, action := range sequence {
		_, err := env.ledger.Record(ctx, "E1", "C1", action)
		require.NoError(t, err)
		next, err := env.ledger.NextAction(ctx, "E1", "C1")
		require.NoError(t, err)
		assert.Equal(t, action.Toggle(), next, "step %d", i)
		time.Sleep(time.Millisecond)
	}
}

func TestRecordValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.employees.CreateEmployee(ctx, &models.RegisteredEmployee{ID: "E1", Name: "Alice", Email: "alice@example.com", CompanyID: "C1"})
	require.NoError(t, err)

	_, err = env.ledger.Record(ctx, "E1", "C1", "lunch")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = env.ledger.Record(ctx, "E1", "C2", models.ActionEntry)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	event, err := env.ledger.RecordNext(ctx, "E1", "C1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionEntry, event.Action)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)
}
