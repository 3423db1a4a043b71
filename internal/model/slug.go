package model

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UniqueSlug slugifies name and appends -2, -3, ... until no row of the
// given model uses it.
func UniqueSlug(tx *gorm.DB, table interface{}, name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}

	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Session(&gorm.Session{NewDB: true}).Model(table).
			Where("slug = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
