package lawyer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/legalease/legalease-server/cmd/models"
	"gorm.io/gorm"
)

var ErrLawyerNotFound = errors.New("lawyer not found")

// Filter narrows the directory listing. All fields are optional and combined
// with AND:
//   - Specialization: exact tag membership in the lawyer's specialization set
//   - Location: case-insensitive substring match
//   - MinRating: rating >= MinRating
//   - SearchTerm: case-insensitive substring match on the lawyer's name, or
//     exact membership in the specialization set
type Filter struct {
	Specialization string
	Location       string
	MinRating      float64
	SearchTerm     string
}

// Directory is the read-side query surface over lawyer profiles. Only
// verified profiles are ever listed; ordering is rating descending.
type Directory interface {
	List(f Filter) ([]models.LawyerProfile, error)
	Get(profileID uint) (*models.LawyerProfile, error)
}

type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) List(f Filter) ([]models.LawyerProfile, error) {
	query := d.db.Model(&models.LawyerProfile{}).
		Preload("User").
		Joins("JOIN users ON users.id = lawyer_profiles.user_id").
		Where("lawyer_profiles.is_verified = ?", true)

	if f.Specialization != "" {
		query = query.Where("? = ANY (lawyer_profiles.specializations)", f.Specialization)
	}
	if f.Location != "" {
		query = query.Where("lawyer_profiles.location ILIKE ?", "%"+f.Location+"%")
	}
	if f.MinRating > 0 {
		query = query.Where("lawyer_profiles.rating >= ?", f.MinRating)
	}
	if f.SearchTerm != "" {
		query = query.Where(
			"users.full_name ILIKE ? OR ? = ANY (lawyer_profiles.specializations)",
			"%"+f.SearchTerm+"%", f.SearchTerm,
		)
	}

	var profiles []models.LawyerProfile
	if err := query.Order("lawyer_profiles.rating DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("listing lawyers: %w", err)
	}
	return profiles, nil
}

func (d *GormDirectory) Get(profileID uint) (*models.LawyerProfile, error) {
	var profile models.LawyerProfile
	if err := d.db.Preload("User").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("loading lawyer profile: %w", err)
	}
	return &profile, nil
}

// MemoryDirectory mirrors GormDirectory's filter semantics over an in-memory
// profile set, for tests and local runs without Postgres.
type MemoryDirectory struct {
	mu       sync.RWMutex
	seq      uint
	profiles map[uint]*models.LawyerProfile
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{profiles: make(map[uint]*models.LawyerProfile)}
}

func (d *MemoryDirectory) Add(profile *models.LawyerProfile) uint {
	d.mu.Lock()
	defer d.mu.Unlock()
	if profile.ID == 0 {
		d.seq++
		profile.ID = d.seq
	} else if profile.ID > d.seq {
		d.seq = profile.ID
	}
	copied := *profile
	d.profiles[copied.ID] = &copied
	return copied.ID
}

func (d *MemoryDirectory) List(f Filter) ([]models.LawyerProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profiles := make([]models.LawyerProfile, 0)
	for _, p := range d.profiles {
		if p.IsVerified && matches(p, f) {
			profiles = append(profiles, *p)
		}
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Rating > profiles[j].Rating
	})
	return profiles, nil
}

func (d *MemoryDirectory) Get(profileID uint) (*models.LawyerProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profile, ok := d.profiles[profileID]
	if !ok {
		return nil, ErrLawyerNotFound
	}
	copied := *profile
	return &copied, nil
}

func matches(p *models.LawyerProfile, f Filter) bool {
	if f.Specialization != "" && !hasTag(p.Specializations, f.Specialization) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if f.SearchTerm != "" {
		name := ""
		if p.User != nil {
			name = p.User.FullName
		}
		nameHit := strings.Contains(strings.ToLower(name), strings.ToLower(f.SearchTerm))
		if !nameHit && !hasTag(p.Specializations, f.SearchTerm) {
			return false
		}
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
