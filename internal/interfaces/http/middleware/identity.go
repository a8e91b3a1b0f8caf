package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/auth"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	userKey   = "current_user"
	claimsKey = "jwt_claims"
)

// Authenticator resolves a bearer access token to an active user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.User, *auth.Claims, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header and loads
// its user. Revoked, expired or malformed tokens are rejected with 401.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}

		user, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				code := dto.NormalizeErrorCode(domainErr.Code)
				status := dto.GetHTTPStatus(code)
				if status == http.StatusInternalServerError {
					status = http.StatusUnauthorized
				}
				c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(
					code, domainErr.Message, c.GetString("request_id")))
				return
			}
			logger.GetGinLogger(c).Error("Failed to authenticate request", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "An unexpected error occurred", c.GetString("request_id")))
			return
		}

		SetCurrentUser(c, user)
		c.Set(claimsKey, claims)
		logger.SetActor(c, user.Email)
		annotateSpan(c, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireStaff rejects non-staff users. Must run after Authenticate.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Staff access required", c.GetString("request_id")))
			return
		}
		c.Next()
	}
}

// SetCurrentUser attaches an authenticated user to the request
func SetCurrentUser(c *gin.Context, user *identity.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the user loaded by Authenticate, or nil
func CurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}

// CurrentClaims returns the access token claims of the request, or nil
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, c.GetString("request_id")))
}
