package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

const jwtContextKey = "viewerToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the platform's auth service; this API only verifies.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	IsStudent bool   `json:"is_student,omitempty"`
	IsCreator bool   `json:"is_creator,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// GenerateToken signs a JWT for the given claims. Used by tests and dev tooling.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	return token.SignedString([]byte(conf.SecretKey))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextViewer derives the agenda viewer from the token claims.
// Creator claims win when both portals are flagged.
func getContextViewer(ctx echo.Context) (timeline.Viewer, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return timeline.Viewer{}, err
	}

	role := timeline.RoleStudent
	if claims.IsCreator {
		role = timeline.RoleCreator
	} else if !claims.IsStudent {
		return timeline.Viewer{}, errHttpForbidden
	}
	return timeline.Viewer{ID: claims.Subject, Email: claims.Email, Role: role}, nil
}
