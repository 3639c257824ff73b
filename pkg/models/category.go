package models

// Category is a named tag attachable to many anime.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:80;not null;uniqueIndex"`
}

func (Category) TableName() string {
	return "categories"
}
