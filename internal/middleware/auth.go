package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"storefront/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
)

// AdminClaims accepts a role either at the top level or under app_metadata,
// the shape hosted auth providers issue.
type AdminClaims struct {
	Role        string `json:"role,omitempty"`
	AppMetadata struct {
		Role string `json:"role,omitempty"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// EffectiveRole prefers the provider-managed app_metadata role.
func (c *AdminClaims) EffectiveRole() string {
	if c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	return c.Role
}

type AuthConfig struct {
	JWKSURL   string
	Secret    string
	AdminRole string
}

// AdminAuth verifies bearer tokens issued by the external auth provider.
type AdminAuth struct {
	jwtConfig echojwt.Config
	adminRole string
	jwks      *keyfunc.JWKS
}

func unauthorized(c echo.Context, err error) error {
	log.Printf("DEBUG: admin auth rejected %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Missing or invalid credential", nil))
}

// NewAdminAuth verifies tokens against the JWKS endpoint when one is
// configured, otherwise against the shared HMAC secret.
func NewAdminAuth(cfg AuthConfig) (*AdminAuth, error) {
	a := &AdminAuth{adminRole: cfg.AdminRole}
	if a.adminRole == "" {
		a.adminRole = "admin"
	}

	a.jwtConfig = echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(AdminClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*AdminClaims)
			if !ok {
				return
			}
			ctx := common.WithSubject(c.Request().Context(), claims.Subject, claims.EffectiveRole())
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: unauthorized,
	}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		a.jwks = jwks
		a.jwtConfig.KeyFunc = jwks.Keyfunc
	case cfg.Secret != "":
		a.jwtConfig.SigningKey = []byte(cfg.Secret)
	default:
		// Nothing can be verified, so admin routes stay closed.
		log.Printf("WARN: no AUTH_JWKS_URL or JWT_SECRET configured; admin API will reject all tokens")
		a.jwtConfig.SigningKey = []byte(random.String(32))
	}

	return a, nil
}

// Authenticate rejects requests without a valid bearer token with 401.
func (a *AdminAuth) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(a.jwtConfig)
}

// RequireAdmin rejects authenticated callers without the admin role with 403.
func (a *AdminAuth) RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(a.adminRole)
}

func (a *AdminAuth) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetSubjectFromContext(ctx); !ok {
				return common.SendError(c, "credential", common.ErrUnauthorized)
			}
			got, _ := common.GetRoleFromContext(ctx)
			if !strings.EqualFold(got, role) {
				return common.SendError(c, "role", common.ErrForbidden)
			}
			return next(c)
		}
	}
}
