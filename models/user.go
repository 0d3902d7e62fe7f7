package models

import "time"

type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Username     string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string      `gorm:"size:254" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	IsStaff      bool        `json:"is_staff"`
	Profile      UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile"`
	Cart         *Cart       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	Orders       []Order     `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
