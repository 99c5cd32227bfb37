package slot

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/legalease/legalease-server/cmd/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotUnavailable = errors.New("slot no longer available")
)

// Store is the single source of truth for slot availability. Claim must be
// atomic: of N concurrent claims on one slot, exactly one wins.
type Store interface {
	ListAvailable(lawyerID uint, date time.Time) ([]models.AvailabilitySlot, error)
	Get(id uint) (*models.AvailabilitySlot, error)
	Claim(id uint) (*models.AvailabilitySlot, error)
	Release(id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListAvailable(lawyerID uint, date time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := s.db.
		Where("lawyer_id = ? AND date = ? AND is_available = ?", lawyerID, date, true).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	return slots, nil
}

func (s *GormStore) Get(id uint) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := s.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("loading slot: %w", err)
	}
	return &slot, nil
}

// Claim flips is_available to false through a single conditional UPDATE, so
// the check and the write cannot interleave with a concurrent claimer. A
// read-then-write pair here would admit double booking. RETURNING hands back
// the claimed row in the same statement; a separate follow-up read could fail
// after the flip and leave the slot claimed with no owner.
func (s *GormStore) Claim(id uint) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	result := s.db.Model(&slot).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_available = ?", id, true).
		Update("is_available", false)
	if result.Error != nil {
		return nil, fmt.Errorf("claiming slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race, or the slot never existed.
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		return nil, ErrSlotUnavailable
	}
	return &slot, nil
}

// Release is idempotent; releasing an already-available slot is a no-op.
func (s *GormStore) Release(id uint) error {
	result := s.db.Model(&models.AvailabilitySlot{}).
		Where("id = ?", id).
		Update("is_available", true)
	if result.Error != nil {
		return fmt.Errorf("releasing slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// MemoryStore keeps slots in process memory. It exists so tests and local
// runs can substitute for Postgres; the claim check-and-flip happens under
// one lock, preserving the exactly-one-winner guarantee of the SQL store.
type MemoryStore struct {
	mu    sync.Mutex
	seq   uint
	slots map[uint]*models.AvailabilitySlot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[uint]*models.AvailabilitySlot)}
}

// Add stores a slot and assigns it an ID if it has none.
func (s *MemoryStore) Add(slot *models.AvailabilitySlot) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == 0 {
		s.seq++
		slot.ID = s.seq
	} else if slot.ID > s.seq {
		s.seq = slot.ID
	}
	copied := *slot
	s.slots[copied.ID] = &copied
	return copied.ID
}

func (s *MemoryStore) ListAvailable(lawyerID uint, date time.Time) ([]models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make([]models.AvailabilitySlot, 0)
	for _, slot := range s.slots {
		if slot.LawyerID == lawyerID && slot.Date.Equal(date) && slot.IsAvailable {
			slots = append(slots, *slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

func (s *MemoryStore) Get(id uint) (*models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *MemoryStore) Claim(id uint) (*models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}
	slot.IsAvailable = false
	copied := *slot
	return &copied, nil
}

func (s *MemoryStore) Release(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	slot.IsAvailable = true
	return nil
}
