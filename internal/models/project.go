package models

import "time"

type Project struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	IsDeleted bool       `gorm:"default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"-"`
}
