package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName           string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Email              string `gorm:"column:email;size:255;not null" json:"email"`
	Role               string `gorm:"column:role;size:50;not null" json:"role"`
	Phone              string `gorm:"column:phone;size:20" json:"phone"`
	ProfilePicturePath string `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path"`

	LawyerProfile *LawyerProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"lawyer_profile,omitempty"`
}

// LawyerProfile is the service-provider record. It is maintained by the
// provider-management side of the platform; the booking core only reads it.
type LawyerProfile struct {
	gorm.Model
	UserID          uint           `gorm:"column:user_id;not null;index" json:"user_id"`
	Specializations pq.StringArray `gorm:"column:specializations;type:text[];not null" json:"specializations"`
	ExperienceYears int            `gorm:"column:experience_years;not null;default:0" json:"experience_years"`
	PriceMin        int64          `gorm:"column:price_min;not null" json:"price_min"`
	PriceMax        int64          `gorm:"column:price_max;not null" json:"price_max"`
	Location        string         `gorm:"column:location;size:255" json:"location"`
	Bio             string         `gorm:"column:bio;type:text" json:"bio"`
	Languages       pq.StringArray `gorm:"column:languages;type:text[]" json:"languages"`
	Modes           pq.StringArray `gorm:"column:consultation_modes;type:text[];not null" json:"consultation_modes"`
	Rating          float64        `gorm:"column:rating;default:0" json:"rating"`
	ReviewCount     int            `gorm:"column:review_count;default:0" json:"review_count"`
	IsVerified      bool           `gorm:"column:is_verified;default:false" json:"is_verified"`
	WorkdayStart    string         `gorm:"column:workday_start;size:5" json:"workday_start"`
	WorkdayEnd      string         `gorm:"column:workday_end;size:5" json:"workday_end"`
	WorkingDays     pq.Int64Array  `gorm:"column:working_days;type:integer[]" json:"working_days"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (LawyerProfile) TableName() string {
	return "lawyer_profiles"
}

// SupportsMode reports whether the lawyer offers the given consultation mode.
func (p *LawyerProfile) SupportsMode(mode ConsultationMode) bool {
	for _, m := range p.Modes {
		if ConsultationMode(m) == mode {
			return true
		}
	}
	return false
}
