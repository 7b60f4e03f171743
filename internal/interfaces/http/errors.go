package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/candy-pos/internal/application/dto"
	"github.com/jhoicas/candy-pos/internal/domain"
)

// errorMapping status y código HTTP de cada error de dominio. El orden importa: un error
// de almacenamiento que envuelve a otro se reporta como almacenamiento.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientRemaining, fiber.StatusConflict, "INSUFFICIENT_REMAINING"},
	{domain.ErrCancellationNotAllowed, fiber.StatusConflict, "CANCELLATION_NOT_ALLOWED"},
	{domain.ErrOrderNotActive, fiber.StatusConflict, "ORDER_NOT_ACTIVE"},
	{domain.ErrActiveOrderExists, fiber.StatusConflict, "ACTIVE_ORDER_EXISTS"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError responde con {success:false, code, error}. El mensaje del error de dominio
// se muestra tal cual; los errores de almacenamiento no exponen la causa.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			msg := err.Error()
			if m.err == domain.ErrStoreUnavailable {
				msg = domain.ErrStoreUnavailable.Error()
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Error: msg})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Error: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Error: msg})
}

// validationError resume los campos que no pasaron el validador.
func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(c, "VALIDATION", err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return badRequest(c, "VALIDATION", "campos inválidos: "+strings.Join(fields, ", "))
}
