package domain

import "time"

// Notification is the in-app record of a notification sent to a user.
// It is written regardless of whether push delivery succeeded and is
// immutable after creation except for the read flag.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body"`
	Data      string    `json:"data"`              // JSON-encoded structured payload
	Type      string    `json:"type" gorm:"index"` // category tag, e.g. "flash_sale"
	Read      bool      `json:"read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}
