package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"animehub/internal/api"
	"animehub/internal/apperr"
)

const CtxClaimsKey = "auth_claims"

// AuthMiddleware requires a bearer token accepted by svc.Identify.
func AuthMiddleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
			api.RespondError(c, apperr.Unauthorized("missing bearer token"))
			return
		}

		raw := strings.TrimSpace(h[len("Bearer "):])
		claims, err := svc.Identify(c.Request.Context(), raw)
		if err != nil {
			api.RespondError(c, err)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
