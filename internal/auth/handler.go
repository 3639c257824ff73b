package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/api"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/register", h.registerUsage)
}

type credentialsReq struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=72"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	if _, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		api.RespondError(c, err)
		return
	}
	api.RespondMessage(c, http.StatusCreated, "User created successfully.")
}

func (h *Handler) registerUsage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"usage": "POST /register with username and password",
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsReq
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	token, exp, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}
