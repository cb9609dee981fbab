// Package shop holds the storefront's catalog and order domain backing the
// HTTP API. It is the server-side counterpart of the mini-app engine.
package shop

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a catalog filter chip.
type Category struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Image    string
	Position int `gorm:"not null;default:0"`
}

// Product is a purchasable catalog entry.
type Product struct {
	ID         string          `gorm:"primaryKey"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric;not null"`
	Image      string
	CategoryID string `gorm:"index;not null"`
	Position   int    `gorm:"not null;default:0"`
}

// Order is a submitted checkout with its captured line items.
type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    string          `gorm:"index"`
	Total     decimal.Decimal `gorm:"type:numeric;not null"`
	Status    string          `gorm:"not null"`
	CreatedAt time.Time
	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots one cart line at checkout time. Name and unit price are
// copied from the product so later catalog edits don't rewrite history.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID string          `gorm:"not null"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity  int             `gorm:"not null"`
}

// Order lifecycle statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Migrate creates the shop tables.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&Category{}, &Product{}, &Order{}, &OrderItem{})
}
