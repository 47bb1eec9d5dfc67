package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/internal/domain"
)

// MsgUseSignup respuesta de POST /users: los usuarios se crean por el flujo de registro.
const MsgUseSignup = "This route is not defined! Please use /signup instead"

// CreateUser godoc
// @Summary      No soportado
// @Tags         users
// @Produce      json
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/v1/users [post]
func CreateUser(c *fiber.Ctx) error {
	return domain.NewAppError(MsgUseSignup, fiber.StatusInternalServerError)
}
