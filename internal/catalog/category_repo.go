package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"animehub/internal/apperr"
	"animehub/pkg/models"
)

const msgCategoryExists = "A category with that name already exists"

// CategoryRepo is the category store.
type CategoryRepo struct {
	DB *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.FromDB(err, "list categories", "")
	}
	return out, nil
}

// Get returns nil, nil when id is unknown.
func (r *CategoryRepo) Get(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "get category", "")
	}
	return &c, nil
}

// GetByName returns nil, nil when no category has that exact name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "get category by name", "")
	}
	return &c, nil
}

// Resolve maps names to stored categories, in input order with duplicates
// removed. The first name without a category yields a NotFound error naming it.
func (r *CategoryRepo) Resolve(ctx context.Context, names []string) ([]models.Category, error) {
	uniq := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	if len(uniq) == 0 {
		return []models.Category{}, nil
	}

	var found []models.Category
	if err := r.DB.WithContext(ctx).Where("name IN ?", uniq).Find(&found).Error; err != nil {
		return nil, apperr.FromDB(err, "resolve categories", "")
	}
	byName := make(map[string]models.Category, len(found))
	for _, c := range found {
		byName[c.Name] = c
	}

	out := make([]models.Category, 0, len(uniq))
	for _, n := range uniq {
		c, ok := byName[n]
		if !ok {
			return nil, apperr.NotFound("Category %s not found", n)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return apperr.FromDB(r.DB.WithContext(ctx).Create(c).Error, "create category", msgCategoryExists)
}

func (r *CategoryRepo) Save(ctx context.Context, c *models.Category) error {
	return apperr.FromDB(r.DB.WithContext(ctx).Save(c).Error, "save category", msgCategoryExists)
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return apperr.FromDB(r.DB.WithContext(ctx).Delete(&models.Category{}, id).Error, "delete category", "")
}

// CountAnime returns how many anime reference the category.
func (r *CategoryRepo) CountAnime(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Table("anime_categories").Where("category_id = ?", id).Count(&n).Error
	if err != nil {
		return 0, apperr.FromDB(err, "count category references", "")
	}
	return n, nil
}
