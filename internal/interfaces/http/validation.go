package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores se reportan con el nombre del campo en JSON/query, no el de Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindJSON parsea el body y valida el DTO. Si falla ya escribió la respuesta 400
// y devuelve ok=false; el handler solo debe retornar err.
func bindJSON(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo de la petición inválido")
	}
	return validateDTO(c, out)
}

// bindQuery parsea y valida los parámetros de query.
func bindQuery(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros de consulta inválidos")
	}
	return validateDTO(c, out)
}

func validateDTO(c *fiber.Ctx, out interface{}) (bool, error) {
	err := validate.Struct(out)
	if err == nil {
		return true, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false, errorJSON(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos",
		Fields:  fields,
	})
}

// fieldPath quita el nombre del struct raíz: "CreateImportRequest.lines[0].product_id" -> "lines[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "fecha inválida, formato " + fe.Param()
	}
	return "valor inválido (" + fe.Tag() + ")"
}
