package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON o de query en lugar del nombre Go.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// parseBody decodifica el JSON y lo valida; si falla ya respondió 400 y ok es false.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

// parseQuery igual que parseBody para parámetros de query.
func parseQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if err := validate.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}
