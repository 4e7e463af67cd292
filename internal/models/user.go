package models

import "time"

// User represents a registered account that can post listings.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(80);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(120);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // No json tag for security
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at"`
}
