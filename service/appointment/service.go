package appointment

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/legalease/legalease-server/cmd/models"
	"github.com/legalease/legalease-server/service/lawyer"
	"github.com/legalease/legalease-server/service/slot"
)

var (
	ErrInvalidTransition        = errors.New("illegal status transition")
	ErrInvalidPaymentTransition = errors.New("illegal payment status transition")
	ErrAmountMismatch           = errors.New("amount does not match slot price")
	ErrInvalidRole              = errors.New("role must be client or lawyer")
)

// BookingRequest carries the caller-supplied booking fields. Schedule fields
// on the created appointment come from the claimed slot, not from here.
type BookingRequest struct {
	LawyerProfileID uint                    `json:"lawyer_profile_id"`
	SlotID          uint                    `json:"slot_id"`
	ScheduledDate   string                  `json:"scheduled_date"`
	ScheduledTime   string                  `json:"scheduled_time"`
	Mode            models.ConsultationMode `json:"consultation_mode"`
	DocumentType    string                  `json:"document_type,omitempty"`
	Description     string                  `json:"description,omitempty"`
	Urgency         string                  `json:"urgency"`
	Amount          int64                   `json:"amount"`
}

// Service drives the appointment lifecycle: booking against a claimed slot,
// status and payment transitions, and slot reconciliation on terminal
// outcomes.
type Service struct {
	store   Store
	slots   slot.Store
	lawyers lawyer.Directory
}

func NewService(store Store, slots slot.Store, lawyers lawyer.Directory) *Service {
	return &Service{store: store, slots: slots, lawyers: lawyers}
}

// Book claims the requested slot and creates the appointment bound to it.
// The claim happens before any appointment write; if the write fails the
// claim is compensated with a release so the slot is not stranded.
func (s *Service) Book(req BookingRequest, clientID uint) (*models.Appointment, error) {
	profile, err := s.lawyers.Get(req.LawyerProfileID)
	if err != nil {
		return nil, err
	}

	claimed, err := s.slots.Claim(req.SlotID)
	if err != nil {
		return nil, err
	}

	if req.Amount != claimed.Price {
		s.releaseSlot(req.SlotID)
		return nil, fmt.Errorf("%w: got %d, slot price is %d", ErrAmountMismatch, req.Amount, claimed.Price)
	}

	duration, err := claimed.DurationMinutes()
	if err != nil {
		s.releaseSlot(req.SlotID)
		return nil, err
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = "low"
	}

	appointment := &models.Appointment{
		ClientID:        clientID,
		LawyerID:        profile.UserID,
		LawyerProfileID: profile.ID,
		SlotID:          claimed.ID,
		ScheduledDate:   claimed.Date,
		ScheduledTime:   claimed.StartTime,
		DurationMinutes: duration,
		Mode:            claimed.Mode,
		DocumentType:    req.DocumentType,
		Description:     req.Description,
		Urgency:         urgency,
		Status:          models.StatusScheduled,
		Amount:          claimed.Price,
		PaymentStatus:   models.PaymentPending,
	}
	if claimed.Mode == models.ModeVideo {
		appointment.MeetingLink = "https://meet.legalease.in/" + uuid.NewString()
	}

	if err := s.store.Create(appointment); err != nil {
		s.releaseSlot(req.SlotID)
		return nil, err
	}
	return appointment, nil
}

// releaseSlot compensates a claim that cannot be kept. A failed release is
// logged so the stranded slot is visible to operators instead of silently
// staying unbookable.
func (s *Service) releaseSlot(slotID uint) {
	if err := s.slots.Release(slotID); err != nil {
		log.Printf("failed to release slot %d after booking failure: %v", slotID, err)
	}
}

// UpdateStatus applies one transition of the appointment state machine.
// Cancellation or no-show before completion releases the bound slot so it
// becomes bookable again; completion consumes the slot permanently.
func (s *Service) UpdateStatus(id uint, next models.AppointmentStatus, notes string) (*models.Appointment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	a, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}

	a.Status = next
	if notes != "" {
		a.Notes = notes
	}
	if err := s.store.Update(a); err != nil {
		return nil, err
	}

	if next == models.StatusCancelled || next == models.StatusNoShow {
		if err := s.slots.Release(a.SlotID); err != nil && !errors.Is(err, slot.ErrSlotNotFound) {
			log.Printf("failed to release slot %d for appointment %d: %v", a.SlotID, a.ID, err)
		}
	}
	return a, nil
}

// RecordPayment inserts a completed payment record and advances the
// appointment's payment status. The two writes form one logical unit; if the
// appointment update fails after the record is written, the error surfaces
// alongside the record instead of being swallowed.
func (s *Service) RecordPayment(appointmentID, payerID uint, amount int64, method, gatewayOrderID, gatewayPaymentID string) (*models.AppointmentPayment, error) {
	a, err := s.store.Get(appointmentID)
	if err != nil {
		return nil, err
	}

	// A repeat call on an already-paid appointment records a second payment
	// row but cannot move the status anywhere. Anything else that cannot
	// reach completed (refunded, failed) is a caller error.
	advance := a.PaymentStatus.CanTransitionTo(models.PaymentCompleted)
	if !advance && a.PaymentStatus != models.PaymentCompleted {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, a.PaymentStatus, models.PaymentCompleted)
	}

	payment := &models.AppointmentPayment{
		AppointmentID:    appointmentID,
		PayerID:          payerID,
		Amount:           amount,
		Currency:         "INR",
		Method:           method,
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		Status:           models.PaymentCompleted,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}

	if advance {
		a.PaymentStatus = models.PaymentCompleted
		if err := s.store.Update(a); err != nil {
			log.Printf("payment %d recorded but appointment %d not advanced: %v", payment.ID, a.ID, err)
			return payment, fmt.Errorf("payment recorded but appointment update failed: %w", err)
		}
	}
	return payment, nil
}

// UpdatePaymentStatus applies one transition of the payment state machine
// directly, for gateway failure and refund handling.
func (s *Service) UpdatePaymentStatus(id uint, next models.PaymentStatus) (*models.Appointment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidPaymentTransition, next)
	}

	a, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !a.PaymentStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, a.PaymentStatus, next)
	}

	a.PaymentStatus = next
	if err := s.store.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(id uint) (*models.Appointment, error) {
	return s.store.Get(id)
}

// ListForUser returns the user's appointments as client or lawyer, ordered
// ascending by scheduled date.
func (s *Service) ListForUser(userID uint, role string) ([]models.Appointment, error) {
	if role != RoleClient && role != RoleLawyer {
		return nil, ErrInvalidRole
	}
	return s.store.ListForUser(userID, role)
}

func (s *Service) ListPayments(appointmentID uint) ([]models.AppointmentPayment, error) {
	if _, err := s.store.Get(appointmentID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(appointmentID)
}
