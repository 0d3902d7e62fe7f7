package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string
type TransactionType string
type ServiceType string

const (
	StatusPending    TransactionStatus = "pending"
	StatusSuccessful TransactionStatus = "successful"
	StatusFailed     TransactionStatus = "failed"

	TypeWalletFunding TransactionType = "wallet_funding"
	TypeAirtime       TransactionType = "airtime"
	TypeData          TransactionType = "data"
	TypeEPIN          TransactionType = "epin"
	TypeCable         TransactionType = "cable"

	ServiceAirtime ServiceType = "airtime"
	ServiceData    ServiceType = "data"
	ServiceCable   ServiceType = "cable"
	ServiceEPIN    ServiceType = "epin"
)

type UserProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	PhoneNumber string    `gorm:"size:20;index" json:"phone_number"`
	IsVerified  bool      `gorm:"default:false;index" json:"is_verified"`
	Wallet      Wallet    `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"wallet"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Wallet struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProfileID   uint            `gorm:"uniqueIndex;not null" json:"profile_id"`
	Balance     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	LastUpdated time.Time       `gorm:"autoUpdateTime" json:"last_updated"`
}

// Transaction is the generic money movement log shown on a user's profile.
type Transaction struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TransactionID     string            `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`
	UserID            uint              `gorm:"index;not null" json:"user_id"`
	ServiceProviderID *uint             `gorm:"index" json:"service_provider_id,omitempty"`
	Amount            decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	TransactionType   TransactionType   `gorm:"type:VARCHAR(20);index" json:"transaction_type"`
	Status            TransactionStatus `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	Description       string            `json:"description"`
	CreatedAt         time.Time         `json:"created_at"`
}

type AirtimeTransaction struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	TransactionID string            `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`
	UserID        uint              `gorm:"index;not null" json:"user_id"`
	Network       string            `gorm:"size:30;index" json:"network"`
	PhoneNumber   string            `gorm:"size:20" json:"phone_number"`
	Amount        decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status        TransactionStatus `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

type DataTransaction struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	TransactionID string            `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`
	UserID        uint              `gorm:"index;not null" json:"user_id"`
	DataPlanID    uint              `gorm:"index" json:"data_plan_id"`
	DataPlan      *DataPlan         `json:"data_plan,omitempty"`
	PhoneNumber   string            `gorm:"size:20" json:"phone_number"`
	Amount        decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status        TransactionStatus `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

type CableSubscription struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	TransactionID   string            `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`
	UserID          uint              `gorm:"index;not null" json:"user_id"`
	PackageID       uint              `gorm:"index" json:"package_id"`
	Package         *CablePackage     `json:"package,omitempty"`
	SmartcardNumber string            `gorm:"size:30" json:"smartcard_number"`
	Amount          decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status          TransactionStatus `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
}

type EPIN struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProviderID   uint            `gorm:"index;not null" json:"provider_id"`
	Pin          string          `gorm:"uniqueIndex;size:32;not null" json:"pin"`
	Denomination decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"denomination"`
	IsUsed       bool            `gorm:"default:false;index" json:"is_used"`
	UsedBy       *uint           `json:"used_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ServiceProvider struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	ServiceType ServiceType `gorm:"type:VARCHAR(20);index" json:"service_type"`
	IsActive    bool        `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

type DataPlan struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	ProviderID   uint             `gorm:"index;not null" json:"provider_id"`
	Provider     *ServiceProvider `json:"provider,omitempty"`
	Name         string           `gorm:"size:100;not null" json:"name"`
	Amount       decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	DataVolume   string           `gorm:"size:30" json:"data_volume"`
	ValidityDays int              `json:"validity_days"`
	IsActive     bool             `gorm:"not null;index" json:"is_active"`
}

type CablePackage struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	ProviderID uint             `gorm:"index;not null" json:"provider_id"`
	Provider   *ServiceProvider `json:"provider,omitempty"`
	Name       string           `gorm:"size:100;not null" json:"name"`
	Amount     decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	IsActive   bool             `gorm:"not null;index" json:"is_active"`
}
