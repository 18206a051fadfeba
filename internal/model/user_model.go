package model

import "time"

type User struct {
	Id       int64     `gorm:"primaryKey;autoIncrement"`
	Username string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email    string    `gorm:"type:varchar(255);not null"`
	Password string    `gorm:"type:varchar(128);not null"`
	Created  time.Time `gorm:"not null"`
}

func (User) TableName() string {
	return "users"
}
