package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animehub/internal/api"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the anime and category routes on rg. Callers put
// the auth middleware on rg.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/anime", h.listAnime)
	rg.POST("/anime", h.createAnime)
	rg.GET("/anime/:id", h.getAnime)
	rg.PUT("/anime/:id", h.replaceAnime)
	rg.PATCH("/anime/:id", h.patchAnime)
	rg.DELETE("/anime/:id", h.deleteAnime)

	rg.GET("/category", h.listCategories)
	rg.POST("/category", h.createCategory)
	rg.GET("/category/:id", h.getCategory)
	rg.PUT("/category/:id", h.replaceCategory)
	rg.PATCH("/category/:id", h.patchCategory)
	rg.DELETE("/category/:id", h.deleteCategory)
}

// animeReq is the body of POST /anime and PUT /anime/:id. Scalars are
// pointers so that an explicit zero passes "required".
type animeReq struct {
	Title      *string  `json:"title" validate:"required,max=120"`
	Rating     *float64 `json:"rating" validate:"required,gte=0"`
	Reviews    *int     `json:"reviews" validate:"required,gte=0"`
	Seasons    *int     `json:"seasons" validate:"required,gte=0"`
	Type       *string  `json:"type" validate:"required,max=80"`
	Poster     *string  `json:"poster" validate:"required,max=255"`
	Categories []string `json:"categories" validate:"required,min=1,dive,required"`
}

func (r animeReq) input() AnimeInput {
	return AnimeInput{
		Title:      *r.Title,
		Rating:     *r.Rating,
		Reviews:    *r.Reviews,
		Seasons:    *r.Seasons,
		Type:       *r.Type,
		Poster:     *r.Poster,
		Categories: r.Categories,
	}
}

type animePatchReq struct {
	Title      *string   `json:"title" validate:"omitempty,max=120"`
	Rating     *float64  `json:"rating" validate:"omitempty,gte=0"`
	Reviews    *int      `json:"reviews" validate:"omitempty,gte=0"`
	Seasons    *int      `json:"seasons" validate:"omitempty,gte=0"`
	Type       *string   `json:"type" validate:"omitempty,max=80"`
	Poster     *string   `json:"poster" validate:"omitempty,max=255"`
	Categories *[]string `json:"categories"`
}

type categoryReq struct {
	Name string `json:"name" validate:"required,max=80"`
}

type categoryPatchReq struct {
	Name *string `json:"name" validate:"omitempty,max=80"`
}

// ---- anime ----

// listAnime accepts optional q, type and category filters; category may be
// repeated or comma separated.
func (h *Handler) listAnime(c *gin.Context) {
	q := ListQuery{
		Q:    c.Query("q"),
		Type: c.Query("type"),
	}
	for _, v := range c.QueryArray("category") {
		q.Categories = append(q.Categories, strings.Split(v, ",")...)
	}

	list, err := h.Svc.ListAnime(c.Request.Context(), q)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"animes": list})
}

func (h *Handler) getAnime(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	a, err := h.Svc.GetAnime(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) createAnime(c *gin.Context) {
	var req animeReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	a, err := h.Svc.CreateAnime(c.Request.Context(), req.input())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) replaceAnime(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	var req animeReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	a, err := h.Svc.ReplaceAnime(c.Request.Context(), id, req.input())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) patchAnime(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	var req animePatchReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	a, err := h.Svc.PatchAnime(c.Request.Context(), id, AnimePatch{
		Title:      req.Title,
		Rating:     req.Rating,
		Reviews:    req.Reviews,
		Seasons:    req.Seasons,
		Type:       req.Type,
		Poster:     req.Poster,
		Categories: req.Categories,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAnime(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if err := h.Svc.DeleteAnime(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}
	api.RespondMessage(c, http.StatusOK, "Anime deleted")
}

// ---- categories ----

func (h *Handler) listCategories(c *gin.Context) {
	list, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) getCategory(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	cat, err := h.Svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) replaceCategory(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	var req categoryReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	cat, err := h.Svc.ReplaceCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) patchCategory(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	var req categoryPatchReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}
	cat, err := h.Svc.PatchCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, err := api.ParseID(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if err := h.Svc.DeleteCategory(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}
	api.RespondMessage(c, http.StatusOK, "Category deleted")
}
