package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"animehub/internal/apperr"
	"animehub/pkg/models"
)

const msgAnimeExists = "An anime with that title already exists"

// AnimeRepo is the anime store, including the anime_categories associations.
type AnimeRepo struct {
	DB *gorm.DB
}

func NewAnimeRepo(db *gorm.DB) *AnimeRepo {
	return &AnimeRepo{DB: db}
}

func preloadCategories(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.id")
	})
}

// ListQuery narrows List. Zero values match everything.
type ListQuery struct {
	Q          string   // case-insensitive title substring
	Type       string   // exact type, case-insensitive
	Categories []string // any-match on category name
}

func (r *AnimeRepo) List(ctx context.Context, q ListQuery) ([]models.Anime, error) {
	db := preloadCategories(r.DB.WithContext(ctx))

	if kw := strings.TrimSpace(q.Q); kw != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		db = db.Where("LOWER(type) = ?", strings.ToLower(t))
	}
	names := make([]string, 0, len(q.Categories))
	for _, n := range q.Categories {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, strings.ToLower(n))
		}
	}
	if len(names) > 0 {
		sub := r.DB.WithContext(ctx).Table("anime_categories").
			Select("anime_categories.anime_id").
			Joins("JOIN categories ON categories.id = anime_categories.category_id").
			Where("LOWER(categories.name) IN ?", names)
		db = db.Where("id IN (?)", sub)
	}

	out := make([]models.Anime, 0)
	if err := db.Order("id").Find(&out).Error; err != nil {
		return nil, apperr.FromDB(err, "list anime", "")
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

// Get returns the anime with its categories, or nil, nil when id is unknown.
func (r *AnimeRepo) Get(ctx context.Context, id uint) (*models.Anime, error) {
	var a models.Anime
	err := preloadCategories(r.DB.WithContext(ctx)).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "get anime", "")
	}
	normalize(&a)
	return &a, nil
}

// TitleTaken reports whether an anime other than exceptID has title.
func (r *AnimeRepo) TitleTaken(ctx context.Context, title string, exceptID uint) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Anime{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.FromDB(err, "check anime title", "")
	}
	return n > 0, nil
}

// Create inserts a and its join rows. Categories must already exist.
func (r *AnimeRepo) Create(ctx context.Context, a *models.Anime) error {
	err := r.DB.WithContext(ctx).Omit("Categories.*").Create(a).Error
	return apperr.FromDB(err, "create anime", msgAnimeExists)
}

// Save overwrites every scalar column of a.
func (r *AnimeRepo) Save(ctx context.Context, a *models.Anime) error {
	err := r.DB.WithContext(ctx).Omit("Categories").Save(a).Error
	return apperr.FromDB(err, "save anime", msgAnimeExists)
}

// Update writes only the given columns. Map updates keep zero values.
func (r *AnimeRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	err := r.DB.WithContext(ctx).Model(&models.Anime{ID: id}).Updates(fields).Error
	return apperr.FromDB(err, "update anime", msgAnimeExists)
}

// ReplaceCategories makes cats the complete category set of a.
func (r *AnimeRepo) ReplaceCategories(ctx context.Context, a *models.Anime, cats []models.Category) error {
	assoc := r.DB.WithContext(ctx).Model(a).Association("Categories")
	var err error
	if len(cats) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(cats)
	}
	return apperr.FromDB(err, "replace anime categories", "")
}

// Delete removes a and its join rows; the categories themselves stay.
func (r *AnimeRepo) Delete(ctx context.Context, a *models.Anime) error {
	db := r.DB.WithContext(ctx)
	if err := db.Model(a).Association("Categories").Clear(); err != nil {
		return apperr.FromDB(err, "detach anime categories", "")
	}
	return apperr.FromDB(db.Delete(&models.Anime{}, a.ID).Error, "delete anime", "")
}

func normalize(a *models.Anime) {
	if a.Categories == nil {
		a.Categories = []models.Category{}
	}
}
