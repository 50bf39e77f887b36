package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trxflow/config"
	"trxflow/models"
	"trxflow/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// UserLookup resolves the subject of a verified token.
type UserLookup interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

// GenerateJWT generates a JWT token whose subject is the user's email
func GenerateJWT(email string, role models.UserRole) (string, error) {
	expire := time.Duration(config.AppConfig.JWTExpireMinutes) * time.Minute
	claims := jwt.MapClaims{
		"sub":  email,
		"role": string(role),
		"iat":  time.Now().Unix(),             // issued at
		"exp":  time.Now().Add(expire).Unix(), // expiry
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// ParseJWT verifies the token and returns its subject.
func ParseJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Check if the token method is valid
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token payload")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token payload")
	}
	return sub, nil
}

// JWTMiddleware checks the bearer token and loads the user it names from the
// store, so role changes take effect without reissuing tokens. Users without a
// role are refused with 403.
func JWTMiddleware(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Missing or invalid Authorization header")
		}

		email, err := ParseJWT(strings.TrimSpace(authHeader[len("Bearer "):]))
		if err != nil {
			return unauthorized(c, "Could not validate credentials")
		}

		user, err := users.ByEmail(c.UserContext(), email)
		if err != nil || user == nil {
			return unauthorized(c, "Could not validate credentials")
		}
		if !user.Role.Valid() {
			return JsonResponse(c, fiber.StatusForbidden, false, "User has no role assigned; contact an administrator", nil)
		}

		c.Locals("currentUser", user)
		c.Locals("caller", services.Caller{ID: user.Email, Role: user.Role})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return JsonResponse(c, fiber.StatusUnauthorized, false, message, nil)
}

// CurrentUser returns the user stored by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("currentUser").(*models.User)
	return user, ok
}

// CallerFrom returns the identity stored by JWTMiddleware or the header
// middlewares.
func CallerFrom(c *fiber.Ctx) services.Caller {
	caller, _ := c.Locals("caller").(services.Caller)
	return caller
}
