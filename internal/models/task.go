package models

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not-started"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the three fixed status values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Rank returns the sort rank of s: not-started < in-progress < completed.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskStatusNotStarted:
		return 0
	case TaskStatusInProgress:
		return 1
	default:
		return 2
	}
}

// Task is the central record. Username and ProjectName are write-time
// snapshots of the owner and project names, restamped on ownership transfer
// and backfilled when the referenced user or project is soft-deleted. They
// are never re-derived at read time.
type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'not-started'" json:"status"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	ProjectID   uint64     `gorm:"not null;index" json:"project_id"`
	Username    string     `gorm:"type:varchar(50)" json:"username"`
	ProjectName string     `gorm:"type:varchar(255)" json:"project_name"`
	IsCoWork    bool       `gorm:"not null;default:false;index" json:"is_co_work"`
	IsArchived  bool       `gorm:"not null;default:false;index" json:"is_archived"`

	// Pre-handoff owner, recorded when the task enters the co-work pool.
	OriginalUserID   *uint64 `json:"original_user_id"`
	OriginalUsername *string `json:"original_username"`

	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
