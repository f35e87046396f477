package models

import "time"

type Team string

const (
	TeamPM Team = "PM"
	TeamCM Team = "CM"
	TeamCC Team = "CC"
	TeamAT Team = "AT"
	TeamMT Team = "MT"
)

// Valid reports whether t is one of the five fixed teams.
func (t Team) Valid() bool {
	switch t {
	case TeamPM, TeamCM, TeamCC, TeamAT, TeamMT:
		return true
	}
	return false
}

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Email        string     `gorm:"type:varchar(255)" json:"email"`
	Team         Team       `gorm:"type:varchar(10);not null" json:"team"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	IsApproved   bool       `gorm:"not null;default:false" json:"is_approved"`
	IsDeleted    bool       `gorm:"default:false" json:"-"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserID" json:"-"`
}
