package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/internal/application/dto"
	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/domain/schema"
	"github.com/jhoicas/tours-api/pkg/logger"
)

// MsgInternal mensaje de todo error no operacional fuera de development.
const MsgInternal = "Something went very wrong!"

// Normalize clasifica cualquier error en un AppError. operational=false indica un error
// de programación o infraestructura: su mensaje no se expone en producción.
func Normalize(err error) (ae *domain.AppError, operational bool) {
	if ae := domain.AsAppError(err); ae != nil {
		return ae, true
	}

	var (
		castErr *domain.CastError
		dupErr  *domain.DuplicateKeyError
		valErr  *schema.ValidationError
		fibErr  *fiber.Error
	)
	switch {
	case errors.As(err, &castErr):
		return domain.WrapAppError(err, castErr.Error(), fiber.StatusBadRequest), true
	case errors.As(err, &dupErr):
		msg := fmt.Sprintf("Duplicate field value: %s. Please use another value!", dupErr.Value)
		return domain.WrapAppError(err, msg, fiber.StatusBadRequest), true
	case errors.As(err, &valErr):
		msg := "Invalid input data. " + strings.Join(valErr.Messages(), ". ")
		return domain.WrapAppError(err, msg, fiber.StatusBadRequest), true
	case errors.As(err, &fibErr):
		return domain.WrapAppError(err, fibErr.Message, fibErr.Code), true
	}
	return domain.WrapAppError(err, MsgInternal, fiber.StatusInternalServerError), false
}

// ErrorHandler único punto donde un error se convierte en respuesta (fiber.Config.ErrorHandler).
// En development la respuesta incluye el error original y su stack.
func ErrorHandler(log *logger.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		ae, operational := Normalize(err)
		if !operational {
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.OriginalURL()).
				Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
				Msg("error no operacional")
		}

		resp := dto.ErrorResponse{Status: ae.Status(), Message: ae.Message}
		if development {
			resp.Message = err.Error()
			resp.Error = fiber.Map{
				"statusCode":    ae.StatusCode,
				"status":        ae.Status(),
				"isOperational": operational,
			}
			resp.Stack = fmt.Sprintf("%+v", err)
		}
		return c.Status(ae.StatusCode).JSON(resp)
	}
}
