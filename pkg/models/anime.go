package models

// Anime is a catalog entry. Categories is the full association set stored in
// the anime_categories join table.
type Anime struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title      string     `json:"title" gorm:"size:120;not null;uniqueIndex"`
	Rating     float64    `json:"rating" gorm:"not null"`
	Reviews    int        `json:"reviews" gorm:"not null"`
	Seasons    int        `json:"seasons" gorm:"not null"`
	Type       string     `json:"type" gorm:"size:80;not null"`
	Poster     string     `json:"poster" gorm:"size:255;not null"`
	Categories []Category `json:"categories" gorm:"many2many:anime_categories;"`
}

func (Anime) TableName() string {
	return "anime"
}
