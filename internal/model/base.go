package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base replaces gorm.Model for every collection: string UUID keys instead of
// auto-increment ids so records can be referenced before they are stored.
type Base struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Brand{},
		&Product{},
		&ProductImage{},
		&Wishlist{},
		&WishlistItem{},
		&Lead{},
		&LeadNote{},
	}
}
