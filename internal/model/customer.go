package model

import "strings"

type Customer struct {
	Base
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (c *Customer) GetFullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
