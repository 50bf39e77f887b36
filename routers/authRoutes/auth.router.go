package authRoutes

import (
	authControllers "trxflow/controllers/auth"
	"trxflow/middleware"
	authValidators "trxflow/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authControllers.Controller, users middleware.UserLookup) {
	authGroup := app.Group("/api/v1/auth")

	authGroup.Post("/usuarios", authValidators.Register(), ctl.Register)
	authGroup.Post("/login", authValidators.Login(), ctl.Login)
	authGroup.Get("/usuarios/me", middleware.JWTMiddleware(users), ctl.Me)
	authGroup.Get("/usuarios/me/logins", middleware.JWTMiddleware(users), ctl.LoginHistory)
}
