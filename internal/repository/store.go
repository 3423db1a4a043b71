package repository

import (
	"storefront_backend/internal/model"

	"gorm.io/gorm"
)

// Store bundles the typed collections the application works with.
type Store struct {
	DB *gorm.DB

	Users         *Collection[model.User]
	Customers     *Collection[model.Customer]
	Brands        *Collection[model.Brand]
	Products      *Collection[model.Product]
	ProductImages *Collection[model.ProductImage]
	Wishlists     *Collection[model.Wishlist]
	WishlistItems *Collection[model.WishlistItem]
	Leads         *Collection[model.Lead]
	LeadNotes     *Collection[model.LeadNote]
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:            db,
		Users:         NewCollection[model.User](db),
		Customers:     NewCollection[model.Customer](db),
		Brands:        NewCollection[model.Brand](db),
		Products:      NewCollection[model.Product](db),
		ProductImages: NewCollection[model.ProductImage](db),
		Wishlists:     NewCollection[model.Wishlist](db),
		WishlistItems: NewCollection[model.WishlistItem](db),
		Leads:         NewCollection[model.Lead](db),
		LeadNotes:     NewCollection[model.LeadNote](db),
	}
}

// WishlistWithItems loads a wishlist by field with its items in position order.
func (s *Store) WishlistWithItems() *Collection[model.Wishlist] {
	return s.Wishlists.WithOrdered("Items", "position ASC")
}
