package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSession marks a session summary that failed validation.
// Callers can classify with errors.Is.
var ErrInvalidSession = errors.New("invalid session summary")

// SessionSummary is the telemetry layer's digest of one completed ride.
// Optional metrics the device did not report arrive as zero values.
type SessionSummary struct {
	SessionID       string    `bson:"sessionId" json:"sessionId"`
	TotalDistance   float64   `bson:"totalDistance" json:"totalDistance"` // kilometers
	TotalCalories   float64   `bson:"totalCalories" json:"totalCalories"` // kcal
	DurationSeconds int       `bson:"durationSeconds" json:"durationSeconds"`
	AvgSpeed        float64   `bson:"avgSpeed" json:"avgSpeed"` // km/h
	MaxSpeed        float64   `bson:"maxSpeed" json:"maxSpeed"`
	AvgPower        float64   `bson:"avgPower" json:"avgPower"` // watts
	MaxPower        float64   `bson:"maxPower" json:"maxPower"`
	EndTime         time.Time `bson:"endTime" json:"endTime"`
}

// Validate checks the summary once at pipeline entry. A summary that fails
// here must not reach any evaluator.
func (s *SessionSummary) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidSession)
	}
	if s.EndTime.IsZero() {
		return fmt.Errorf("%w: endTime is required", ErrInvalidSession)
	}
	if s.TotalDistance < 0 || s.TotalCalories < 0 || s.DurationSeconds < 0 {
		return fmt.Errorf("%w: distance, calories and duration must be non-negative", ErrInvalidSession)
	}
	if s.AvgSpeed < 0 || s.MaxSpeed < 0 || s.AvgPower < 0 || s.MaxPower < 0 {
		return fmt.Errorf("%w: speed and power metrics must be non-negative", ErrInvalidSession)
	}
	return nil
}

// DurationMinutes returns the session duration in whole-precision minutes.
func (s *SessionSummary) DurationMinutes() float64 {
	return float64(s.DurationSeconds) / 60.0
}
