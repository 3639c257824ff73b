package models

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`
}

func (User) TableName() string {
	return "users"
}
