// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/dto"
)

const (
	claimsKey = "auth_claims"

	// accessTokenParam lets EventSource clients, which cannot set headers,
	// pass the token on the summary stream.
	accessTokenParam = "access_token"
)

// AuthMiddleware resolves the budget owner from a bearer token.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate rejects requests without a valid access token and stores the
// token claims for the handlers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code := bearerToken(c)
		if code != "" {
			abortUnauthorized(c, code)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, domainerror.ErrExpiredToken):
			abortUnauthorized(c, domainerror.ErrCodeExpiredToken)
			return
		case err != nil:
			abortUnauthorized(c, domainerror.ErrCodeInvalidToken)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, or from the
// access_token query parameter on GET requests.
func bearerToken(c *gin.Context) (string, domainerror.AuthErrorCode) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if c.Request.Method == http.MethodGet {
			if token := c.Query(accessTokenParam); token != "" {
				return token, ""
			}
		}
		return "", domainerror.ErrCodeMissingToken
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", domainerror.ErrCodeInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domainerror.ErrCodeMissingToken
	}
	return token, ""
}

var authMessages = map[domainerror.AuthErrorCode]string{
	domainerror.ErrCodeMissingToken: "Authorization header is required",
	domainerror.ErrCodeInvalidToken: "Invalid access token",
	domainerror.ErrCodeExpiredToken: "Access token has expired",
}

func abortUnauthorized(c *gin.Context, code domainerror.AuthErrorCode) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: authMessages[code],
		Code:  string(code),
	})
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(c *gin.Context) (*adapter.TokenClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*adapter.TokenClaims)
	return claims, ok && claims != nil
}

// OwnerIDFromContext returns the authenticated owner's ID.
func OwnerIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
