// Package model defines the GORM table mappings for the board schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	DisplayName   string    `gorm:"type:varchar(80);not null"`
	PhotoURL      string    `gorm:"type:varchar(512)"`
	Street        string    `gorm:"type:varchar(160)"`
	ItemsLent     int       `gorm:"not null;default:0"`
	ItemsBorrowed int       `gorm:"not null;default:0"`
	Rating        float64   `gorm:"not null;default:0"`
	RatingsCount  int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ListingModel mirrors the 'listings' table. Coordinates are stored as plain
// lng/lat columns; the proximity filter runs in the core, not in SQL.
type ListingModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(120);not null"`
	Category    string    `gorm:"type:varchar(60);not null"`
	Description string    `gorm:"type:text"`
	PhotoURL    string    `gorm:"type:varchar(512)"`
	Lng         float64   `gorm:"not null"`
	Lat         float64   `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ListingModel) TableName() string {
	return "listings"
}

// BorrowRequestModel mirrors the 'borrow_requests' table.
type BorrowRequestModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ListingID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BorrowerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;index"`
	Note       string    `gorm:"type:text"`
	FromDate   *time.Time
	ToDate     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (BorrowRequestModel) TableName() string {
	return "borrow_requests"
}

// ChatMessageModel mirrors the 'chat_messages' table.
type ChatMessageModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// SettingModel mirrors the 'settings' table, a small key/value store for
// per-deployment state such as the local profile id.
type SettingModel struct {
	Key       string `gorm:"type:varchar(60);primary_key"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SettingModel) TableName() string {
	return "settings"
}
