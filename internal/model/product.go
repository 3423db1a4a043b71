package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJMD Currency = "JMD"
	CurrencyCAD Currency = "CAD"
)

type Product struct {
	Base
	Name        string         `json:"name" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Currency    Currency       `json:"currency" gorm:"size:3;not null;default:'USD'"`
	SKU         string         `json:"sku" gorm:"index"`
	BrandID     *string        `json:"brand_id,omitempty" gorm:"type:varchar(36);index"`
	Published   bool           `json:"published" gorm:"default:false;index"`
	Attributes  datatypes.JSON `json:"attributes,omitempty"`

	Brand  *Brand         `json:"brand,omitempty" gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	Images []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ProductImage struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);index;not null"`
	URL       string `json:"url" gorm:"not null"`
	IsCover   bool   `json:"is_cover" gorm:"default:false"`
	Order     int    `json:"order" gorm:"default:0"`
}

// BeforeCreate fills the slug from the name when it is empty.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if err := p.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if p.Slug == "" {
		p.Slug = UniqueSlug(tx, &Product{}, p.Name)
	}
	return nil
}
