package model

import "gorm.io/gorm"

type User struct {
	gorm.Model        // ID, CreatedAt, UpdatedAt, DeletedAt
	Email      string `gorm:"type:varchar(120);uniqueIndex;not null"`
	Password   string `gorm:"type:varchar(255);not null"`
	FullName   string `gorm:"column:full_name;type:varchar(120)"`
	Phone      string `gorm:"type:varchar(20)"`
	Address    string `gorm:"type:text"`
}

func (User) TableName() string {
	return "users"
}
