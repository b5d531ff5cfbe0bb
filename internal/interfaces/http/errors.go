package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/infrastructure/storage"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden: los errores más específicos primero.
var errorTable = []errorMapping{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrRequestNotPending, fiber.StatusNotFound, "NOT_PENDING"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrReturnQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrReturnExceeded, fiber.StatusBadRequest, "RETURN_EXCEEDED"},
	{domain.ErrNothingToReturn, fiber.StatusBadRequest, "NOTHING_TO_RETURN"},
	{domain.ErrSameOffice, fiber.StatusBadRequest, "SAME_OFFICE"},
	{domain.ErrUsernameAlreadyExists, fiber.StatusConflict, "USERNAME_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOnlyPending, fiber.StatusConflict, "ONLY_PENDING"},
	{domain.ErrNotReturnable, fiber.StatusConflict, "NOT_RETURNABLE"},
	{domain.ErrAlreadyResolved, fiber.StatusConflict, "ALREADY_RESOLVED"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInactive, fiber.StatusConflict, "INACTIVE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConnection, fiber.StatusServiceUnavailable, "UNAVAILABLE"},
	{storage.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{storage.ErrExtensionDenied, fiber.StatusBadRequest, "FILE_TYPE"},
	{storage.ErrEmptyFile, fiber.StatusBadRequest, "FILE_EMPTY"},
}

// writeError traduce un error de aplicación a status + dto.ErrorResponse.
// Los errores no mapeados se registran con una referencia y no exponen detalles.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	ref := uuid.NewString()
	log.Error().Err(err).Str("ref", ref).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "INTERNAL",
		Message: "error interno, referencia " + ref,
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: msg})
}

// done respuesta estándar de las acciones de flujo.
func done(c *fiber.Ctx, msg string, data interface{}) error {
	return c.JSON(dto.ActionResponse{Success: true, Message: msg, Data: data})
}
