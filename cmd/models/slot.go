package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ConsultationMode string

const (
	ModeVideo    ConsultationMode = "video"
	ModePhone    ConsultationMode = "phone"
	ModeInPerson ConsultationMode = "in-person"
)

func (m ConsultationMode) Valid() bool {
	switch m {
	case ModeVideo, ModePhone, ModeInPerson:
		return true
	}
	return false
}

// AvailabilitySlot is one bookable (lawyer, date, time window, mode) unit.
// A lawyer offering the same window over several modes has one row per mode.
// Slots are created available and flip to unavailable exactly once when
// claimed; a cancellation before completion flips them back.
type AvailabilitySlot struct {
	gorm.Model
	LawyerID    uint             `gorm:"column:lawyer_id;not null;index" json:"lawyer_id"`
	Date        time.Time        `gorm:"column:date;not null" json:"date"`
	StartTime   string           `gorm:"column:start_time;size:5;not null" json:"start_time"`
	EndTime     string           `gorm:"column:end_time;size:5;not null" json:"end_time"`
	IsAvailable bool             `gorm:"column:is_available;default:true" json:"is_available"`
	Price       int64            `gorm:"column:price;not null" json:"price"`
	Mode        ConsultationMode `gorm:"column:consultation_mode;size:20;not null" json:"consultation_mode"`

	Lawyer *User `gorm:"foreignKey:LawyerID" json:"-"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}

// DurationMinutes derives the slot length from its HH:MM bounds. A parse
// failure means the stored row is corrupt and must not silently turn into a
// zero-length appointment.
func (s *AvailabilitySlot) DurationMinutes() (int, error) {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid slot start time %q: %w", s.StartTime, err)
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid slot end time %q: %w", s.EndTime, err)
	}
	return int(end.Sub(start).Minutes()), nil
}
