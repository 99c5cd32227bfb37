package appointment

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/legalease/legalease-server/cmd/models"
	"gorm.io/gorm"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

const (
	RoleClient = "client"
	RoleLawyer = "lawyer"
)

// Store persists appointments and their payment records. Appointments are
// never deleted; terminal states are kept for audit and history views.
type Store interface {
	Create(a *models.Appointment) error
	Get(id uint) (*models.Appointment, error)
	Update(a *models.Appointment) error
	ListForUser(userID uint, role string) ([]models.Appointment, error)
	CreatePayment(p *models.AppointmentPayment) error
	ListPayments(appointmentID uint) ([]models.AppointmentPayment, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(a *models.Appointment) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (s *GormStore) Get(id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.Preload("Client").Preload("Lawyer").Preload("Profile").First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	return &a, nil
}

func (s *GormStore) Update(a *models.Appointment) error {
	if err := s.db.Save(a).Error; err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

func (s *GormStore) ListForUser(userID uint, role string) ([]models.Appointment, error) {
	column := "client_id"
	if role == RoleLawyer {
		column = "lawyer_id"
	}

	var appointments []models.Appointment
	err := s.db.Where(column+" = ?", userID).
		Preload("Lawyer").Preload("Profile").
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return appointments, nil
}

func (s *GormStore) CreatePayment(p *models.AppointmentPayment) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("creating payment record: %w", err)
	}
	return nil
}

func (s *GormStore) ListPayments(appointmentID uint) ([]models.AppointmentPayment, error) {
	var payments []models.AppointmentPayment
	err := s.db.Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return payments, nil
}

// MemoryStore substitutes for Postgres in tests and local runs.
type MemoryStore struct {
	mu           sync.Mutex
	seq          uint
	paymentSeq   uint
	appointments map[uint]*models.Appointment
	payments     map[uint][]models.AppointmentPayment
	failCreate   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appointments: make(map[uint]*models.Appointment),
		payments:     make(map[uint][]models.AppointmentPayment),
	}
}

// FailNextCreate makes the next Create return err, for exercising the
// compensating-release path.
func (s *MemoryStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = err
}

func (s *MemoryStore) Create(a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		err := s.failCreate
		s.failCreate = nil
		return err
	}
	s.seq++
	a.ID = s.seq
	copied := *a
	s.appointments[copied.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(id uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *MemoryStore) Update(a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	copied := *a
	s.appointments[a.ID] = &copied
	return nil
}

func (s *MemoryStore) ListForUser(userID uint, role string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appointments := make([]models.Appointment, 0)
	for _, a := range s.appointments {
		if (role == RoleLawyer && a.LawyerID == userID) ||
			(role != RoleLawyer && a.ClientID == userID) {
			appointments = append(appointments, *a)
		}
	}
	sort.SliceStable(appointments, func(i, j int) bool {
		if !appointments[i].ScheduledDate.Equal(appointments[j].ScheduledDate) {
			return appointments[i].ScheduledDate.Before(appointments[j].ScheduledDate)
		}
		return appointments[i].ScheduledTime < appointments[j].ScheduledTime
	})
	return appointments, nil
}

func (s *MemoryStore) CreatePayment(p *models.AppointmentPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentSeq++
	p.ID = s.paymentSeq
	s.payments[p.AppointmentID] = append(s.payments[p.AppointmentID], *p)
	return nil
}

func (s *MemoryStore) ListPayments(appointmentID uint) ([]models.AppointmentPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AppointmentPayment(nil), s.payments[appointmentID]...), nil
}
