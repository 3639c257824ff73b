// Package catalog implements anime and category management on top of the
// gorm stores. Every mutating operation runs in a single transaction, so a
// failed category lookup never leaves partial state behind.
package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"animehub/internal/apperr"
	"animehub/internal/logging"
	"animehub/internal/metrics"
	"animehub/internal/sync"
	"animehub/pkg/models"
)

// Publisher receives an event after each committed mutation.
type Publisher interface {
	Publish(ev sync.CatalogEvent)
}

type Service struct {
	DB     *gorm.DB
	Anime  *AnimeRepo
	Cats   *CategoryRepo
	Events Publisher // optional
}

func NewService(db *gorm.DB, events Publisher) *Service {
	return &Service{
		DB:     db,
		Anime:  NewAnimeRepo(db),
		Cats:   NewCategoryRepo(db),
		Events: events,
	}
}

// AnimeInput is a complete anime record as submitted on create and replace.
type AnimeInput struct {
	Title      string
	Rating     float64
	Reviews    int
	Seasons    int
	Type       string
	Poster     string
	Categories []string
}

// AnimePatch holds the fields a patch supplies; nil means omitted.
// A non-nil Categories, even empty, replaces the whole set.
type AnimePatch struct {
	Title      *string
	Rating     *float64
	Reviews    *int
	Seasons    *int
	Type       *string
	Poster     *string
	Categories *[]string
}

func (p AnimePatch) empty() bool {
	return p.Title == nil && p.Rating == nil && p.Reviews == nil && p.Seasons == nil &&
		p.Type == nil && p.Poster == nil && p.Categories == nil
}

func (s *Service) inTx(ctx context.Context, fn func(anime *AnimeRepo, cats *CategoryRepo) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAnimeRepo(tx), NewCategoryRepo(tx))
	})
}

func (s *Service) publish(ctx context.Context, entity, action string, id uint, label string) {
	metrics.RecordMutation(entity, action)
	logging.Ctx(ctx).Info().Str("entity", entity).Str("action", action).Uint("id", id).Str("label", label).Msg("catalog mutation")
	if s.Events != nil {
		s.Events.Publish(sync.NewEvent(entity, action, id, label))
	}
}

func validateInput(in AnimeInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title: this field cannot be blank")
	}
	if len(in.Categories) == 0 {
		return apperr.Validation("categories: at least one category is required")
	}
	return nil
}

// ---- anime ----

func (s *Service) ListAnime(ctx context.Context, q ListQuery) ([]models.Anime, error) {
	return s.Anime.List(ctx, q)
}

func (s *Service) GetAnime(ctx context.Context, id uint) (*models.Anime, error) {
	a, err := s.Anime.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("Anime not found")
	}
	return a, nil
}

func (s *Service) CreateAnime(ctx context.Context, in AnimeInput) (*models.Anime, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *models.Anime
	err := s.inTx(ctx, func(anime *AnimeRepo, cats *CategoryRepo) error {
		taken, err := anime.TitleTaken(ctx, in.Title, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgAnimeExists)
		}

		resolved, err := cats.Resolve(ctx, in.Categories)
		if err != nil {
			return err
		}

		a := &models.Anime{
			Title:      in.Title,
			Rating:     in.Rating,
			Reviews:    in.Reviews,
			Seasons:    in.Seasons,
			Type:       in.Type,
			Poster:     in.Poster,
			Categories: resolved,
		}
		if err := anime.Create(ctx, a); err != nil {
			return err
		}
		out, err = anime.Get(ctx, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sync.EntityAnime, "created", out.ID, out.Title)
	return out, nil
}

func (s *Service) ReplaceAnime(ctx context.Context, id uint, in AnimeInput) (*models.Anime, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *models.Anime
	err := s.inTx(ctx, func(anime *AnimeRepo, cats *CategoryRepo) error {
		a, err := anime.Get(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.NotFound("Anime not found")
		}

		taken, err := anime.TitleTaken(ctx, in.Title, id)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict(msgAnimeExists)
		}

		resolved, err := cats.Resolve(ctx, in.Categories)
		if err != nil {
			return err
		}

		a.Title = in.Title
		a.Rating = in.Rating
		a.Reviews = in.Reviews
		a.Seasons = in.Seasons
		a.Type = in.Type
		a.Poster = in.Poster
		if err := anime.Save(ctx, a); err != nil {
			return err
		}
		if err := anime.ReplaceCategories(ctx, a, resolved); err != nil {
			return err
		}
		out, err = anime.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sync.EntityAnime, "replaced", out.ID, out.Title)
	return out, nil
}

func (s *Service) PatchAnime(ctx context.Context, id uint, p AnimePatch) (*models.Anime, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, apperr.Validation("title: this field cannot be blank")
	}
	if p.empty() {
		return s.GetAnime(ctx, id)
	}

	var out *models.Anime
	err := s.inTx(ctx, func(anime *AnimeRepo, cats *CategoryRepo) error {
		a, err := anime.Get(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.NotFound("Anime not found")
		}

		fields := make(map[string]any)
		if p.Title != nil {
			taken, err := anime.TitleTaken(ctx, *p.Title, id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict(msgAnimeExists)
			}
			fields["title"] = *p.Title
		}
		if p.Rating != nil {
			fields["rating"] = *p.Rating
		}
		if p.Reviews != nil {
			fields["reviews"] = *p.Reviews
		}
		if p.Seasons != nil {
			fields["seasons"] = *p.Seasons
		}
		if p.Type != nil {
			fields["type"] = *p.Type
		}
		if p.Poster != nil {
			fields["poster"] = *p.Poster
		}

		var resolved []models.Category
		if p.Categories != nil {
			if resolved, err = cats.Resolve(ctx, *p.Categories); err != nil {
				return err
			}
		}

		if len(fields) > 0 {
			if err := anime.Update(ctx, id, fields); err != nil {
				return err
			}
		}
		if p.Categories != nil {
			if err := anime.ReplaceCategories(ctx, a, resolved); err != nil {
				return err
			}
		}
		out, err = anime.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sync.EntityAnime, "patched", out.ID, out.Title)
	return out, nil
}

func (s *Service) DeleteAnime(ctx context.Context, id uint) error {
	var title string
	err := s.inTx(ctx, func(anime *AnimeRepo, _ *CategoryRepo) error {
		a, err := anime.Get(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.NotFound("Anime not found")
		}
		title = a.Title
		return anime.Delete(ctx, a)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, sync.EntityAnime, "deleted", id, title)
	return nil
}

// ---- categories ----

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Cats.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Category not found")
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("name: this field cannot be blank")
	}

	c := &models.Category{Name: name}
	err := s.inTx(ctx, func(_ *AnimeRepo, cats *CategoryRepo) error {
		existing, err := cats.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict(msgCategoryExists)
		}
		return cats.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sync.EntityCategory, "created", c.ID, c.Name)
	return c, nil
}

func (s *Service) ReplaceCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("name: this field cannot be blank")
	}
	return s.renameCategory(ctx, id, name, "replaced")
}

// PatchCategory renames the category when name is supplied and otherwise
// returns it unchanged.
func (s *Service) PatchCategory(ctx context.Context, id uint, name *string) (*models.Category, error) {
	if name == nil {
		return s.GetCategory(ctx, id)
	}
	if strings.TrimSpace(*name) == "" {
		return nil, apperr.Validation("name: this field cannot be blank")
	}
	return s.renameCategory(ctx, id, *name, "patched")
}

func (s *Service) renameCategory(ctx context.Context, id uint, name, action string) (*models.Category, error) {
	var out *models.Category
	err := s.inTx(ctx, func(_ *AnimeRepo, cats *CategoryRepo) error {
		c, err := cats.Get(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("Category not found")
		}
		other, err := cats.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict(msgCategoryExists)
		}
		c.Name = name
		if err := cats.Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, sync.EntityCategory, action, out.ID, out.Name)
	return out, nil
}

// DeleteCategory refuses with Conflict while any anime still references the
// category.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	var name string
	err := s.inTx(ctx, func(_ *AnimeRepo, cats *CategoryRepo) error {
		c, err := cats.Get(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("Category not found")
		}
		n, err := cats.CountAnime(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("Category %s is still used by %d anime", c.Name, n)
		}
		name = c.Name
		return cats.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, sync.EntityCategory, "deleted", id, name)
	return nil
}
