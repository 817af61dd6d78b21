package domain

import "time"

type User struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	Name  string `json:"name"`
	Role  string `json:"role" gorm:"default:user"` // "user" or "admin"
	// DeviceToken is the user's current push token. Nil means the user
	// has no push-capable device registered; last write wins on update.
	DeviceToken *string   `json:"-" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
