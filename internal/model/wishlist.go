package model

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Wishlist struct {
	Base
	Name       string `json:"name"`
	CustomerID string `json:"customer_id,omitempty" gorm:"type:varchar(36);index"`
	Email      string `json:"email,omitempty" gorm:"index"`
	ShareToken string `json:"share_token" gorm:"uniqueIndex;not null"`

	Items []WishlistItem `json:"items" gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

// WishlistItem only references a product; price is looked up when needed.
type WishlistItem struct {
	Base
	WishlistID string `json:"wishlist_id" gorm:"type:varchar(36);index;not null"`
	ProductID  string `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Position   int    `json:"position" gorm:"default:0"`
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if err := w.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if w.ShareToken == "" {
		w.ShareToken = NewShareToken()
	}
	return nil
}

// NewShareToken returns a 32 character hex token.
func NewShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HasProduct reports whether productID is already in the wishlist.
func (w *Wishlist) HasProduct(productID string) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
