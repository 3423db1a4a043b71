package model

import "gorm.io/gorm"

type Brand struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	LogoURL     string `json:"logo_url"`
	Website     string `json:"website"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if err := b.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if b.Slug == "" {
		b.Slug = UniqueSlug(tx, &Brand{}, b.Name)
	}
	return nil
}
