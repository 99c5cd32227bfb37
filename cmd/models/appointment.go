package models

import (
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in-progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no-show"
)

// statusTransitions holds the legal appointment transitions. Completion is
// only reachable through confirmed and in-progress; completed, cancelled and
// no-show are terminal.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusNoShow},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0 && s.Valid()
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// A failed payment may retry back to pending; refunded is terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {PaymentPending},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0 && s.Valid()
}

// Appointment binds a client to a lawyer's claimed slot. Schedule fields are
// copied from the slot at booking time and are the source of truth afterwards;
// the slot row may be deleted or reused by scheduling processes. Appointments
// are never physically deleted.
type Appointment struct {
	gorm.Model
	ClientID        uint              `gorm:"column:client_id;not null;index" json:"client_id"`
	LawyerID        uint              `gorm:"column:lawyer_id;not null;index" json:"lawyer_id"`
	LawyerProfileID uint              `gorm:"column:lawyer_profile_id;not null" json:"lawyer_profile_id"`
	SlotID          uint              `gorm:"column:slot_id;not null" json:"slot_id"`
	ScheduledDate   time.Time         `gorm:"column:scheduled_date;not null" json:"scheduled_date"`
	ScheduledTime   string            `gorm:"column:scheduled_time;size:5;not null" json:"scheduled_time"`
	DurationMinutes int               `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Mode            ConsultationMode  `gorm:"column:consultation_mode;size:20;not null" json:"consultation_mode"`
	DocumentType    string            `gorm:"column:document_type;size:100" json:"document_type,omitempty"`
	Description     string            `gorm:"column:description;type:text" json:"description,omitempty"`
	Urgency         string            `gorm:"column:urgency;size:10;not null;default:low" json:"urgency"`
	Status          AppointmentStatus `gorm:"column:status;size:20;not null;default:scheduled" json:"status"`
	Amount          int64             `gorm:"column:amount;not null" json:"amount"`
	PaymentStatus   PaymentStatus     `gorm:"column:payment_status;size:20;not null;default:pending" json:"payment_status"`
	MeetingLink     string            `gorm:"column:meeting_link;size:255" json:"meeting_link,omitempty"`
	Notes           string            `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Client  *User             `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Lawyer  *User             `gorm:"foreignKey:LawyerID" json:"lawyer,omitempty"`
	Profile *LawyerProfile    `gorm:"foreignKey:LawyerProfileID" json:"profile,omitempty"`
	Slot    *AvailabilitySlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}

// AppointmentPayment is an immutable payment attempt record. Gateway
// identifiers stay empty until the gateway confirms.
type AppointmentPayment struct {
	gorm.Model
	AppointmentID    uint          `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	PayerID          uint          `gorm:"column:payer_id;not null" json:"payer_id"`
	Amount           int64         `gorm:"column:amount;not null" json:"amount"`
	Currency         string        `gorm:"column:currency;size:8;not null;default:INR" json:"currency"`
	Method           string        `gorm:"column:method;size:50;not null" json:"method"`
	GatewayOrderID   string        `gorm:"column:gateway_order_id;size:255" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string        `gorm:"column:gateway_payment_id;size:255" json:"gateway_payment_id,omitempty"`
	Status           PaymentStatus `gorm:"column:status;size:20;not null" json:"status"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
