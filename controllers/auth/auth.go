package authController

import (
	"errors"
	"strings"

	"trxflow/middleware"
	"trxflow/models"
	"trxflow/services"
	authValidator "trxflow/validators/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const loginHistoryLimit = 20

type Controller struct {
	users *services.UserService
	log   *zap.Logger
}

func New(users *services.UserService, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{users: users, log: log}
}

// Register creates a user and assigns the next id of its role.
func (ctl *Controller) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// An unknown role parses to "" and is refused by the service.
	role, _ := models.ParseRole(reqData.Role)

	user, err := ctl.users.Register(c.UserContext(), services.RegisterUserInput{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: reqData.Password,
		Role:     role,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, ctl.log, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", user)
}

// Login exchanges email and password for a bearer token.
func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := ctl.users.Authenticate(c.UserContext(), reqData.Username, reqData.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
		}
		return middleware.ServiceErrorResponse(c, ctl.log, err)
	}

	token, err := middleware.GenerateJWT(user.Email, user.Role)
	if err != nil {
		ctl.log.Error("failed to sign token", zap.String("user_id", user.UserID), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	// X-Forwarded-For lists the client first, then each proxy.
	ip := c.IP()
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	ctl.users.RecordLogin(c.UserContext(), user, ip, c.Get(fiber.HeaderUserAgent))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated user.
func (ctl *Controller) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Could not validate credentials", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", user)
}

// LoginHistory lists the authenticated user's recent logins.
func (ctl *Controller) LoginHistory(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Could not validate credentials", nil)
	}

	logins, err := ctl.users.RecentLogins(c.UserContext(), user, loginHistoryLimit)
	if err != nil {
		return middleware.ServiceErrorResponse(c, ctl.log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login history fetched successfully.", logins)
}
