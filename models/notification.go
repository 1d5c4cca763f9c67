package models

import "time"

// Notification is a persisted, role-targeted message shown in the admin and
// faculty panels. TargetRole is "admin", "faculty" or "all"; visibility is
// resolved at query time from the reader's role.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Type       string    `gorm:"column:type;size:50" json:"type"`
	Message    string    `gorm:"column:message;size:500;not null" json:"message"`
	TargetRole string    `gorm:"column:target_role;size:20;default:all" json:"target_role"`
	CreatedBy  string    `gorm:"column:created_by;size:80" json:"created_by"`
	IsRead     bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
