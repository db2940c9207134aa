package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainerror "github.com/wedding-planner/backend/internal/domain/error"
)

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService("test-secret")
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := service.GenerateAccessToken(userID, "couple@example.com", time.Hour)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		claims, err := service.ValidateAccessToken(ctx, token)
		if err != nil {
			t.Fatalf("failed to validate token: %v", err)
		}
		if claims.UserID != userID || claims.Email != "couple@example.com" {
			t.Errorf("unexpected claims %+v", claims)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := service.GenerateAccessToken(userID, "couple@example.com", -time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		if _, err := service.ValidateAccessToken(ctx, token); !errors.Is(err, domainerror.ErrExpiredToken) {
			t.Errorf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewTokenService("other-secret").GenerateAccessToken(userID, "couple@example.com", time.Hour)

		if _, err := service.ValidateAccessToken(ctx, token); !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	sign := func(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		return token
	}

	valid := func() OwnerClaims {
		return OwnerClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    tokenIssuer,
				Audience:  jwt.ClaimStrings{tokenAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	rejected := map[string]func(t *testing.T) string{
		"other audience": func(t *testing.T) string {
			claims := valid()
			claims.Audience = jwt.ClaimStrings{"another-api"}
			return sign(t, claims, jwt.SigningMethodHS256, []byte("test-secret"))
		},
		"other issuer": func(t *testing.T) string {
			claims := valid()
			claims.Issuer = "someone-else"
			return sign(t, claims, jwt.SigningMethodHS256, []byte("test-secret"))
		},
		"no expiry": func(t *testing.T) string {
			claims := valid()
			claims.ExpiresAt = nil
			return sign(t, claims, jwt.SigningMethodHS256, []byte("test-secret"))
		},
		"subject is not a uuid": func(t *testing.T) string {
			claims := valid()
			claims.Subject = "couple@example.com"
			return sign(t, claims, jwt.SigningMethodHS256, []byte("test-secret"))
		},
		"HS512 signature": func(t *testing.T) string {
			return sign(t, valid(), jwt.SigningMethodHS512, []byte("test-secret"))
		},
	}

	for name, build := range rejected {
		t.Run(name, func(t *testing.T) {
			if _, err := service.ValidateAccessToken(ctx, build(t)); !errors.Is(err, domainerror.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	t.Run("garbage", func(t *testing.T) {
		if _, err := service.ValidateAccessToken(ctx, "not-a-jwt"); !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
