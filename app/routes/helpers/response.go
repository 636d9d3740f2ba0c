package helpers

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := models.DayOfWeek(strings.ToLower(fl.Field().String())).Weekday()
		return ok
	})
	return v
}

// Success writes the standard success envelope with data under key
func Success(c *fiber.Ctx, key string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, key, data)
}

func SuccessWithCode(c *fiber.Ctx, code int, key string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"success": true,
		key:       data,
	})
}

func Message(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// Fail writes the error envelope
func Fail(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// ParseBody decodes and validates a request DTO. Pass a failure to ValidationError.
func ParseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errors.Wrap(err, "parsing body")
	}
	return validate.Struct(dst)
}

// ValidationError reports validator/v10 failures per field
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Validation failed",
		"code":    fiber.StatusBadRequest,
		"fields":  fields,
	})
}

// UUIDParam reads a path parameter that must be a UUID. ok is false once the
// 400 response has been written.
func UUIDParam(c *fiber.Ctx, name string) (string, bool) {
	raw := c.Params(name)
	if _, err := uuid.Parse(raw); err != nil {
		_ = Fail(c, fiber.StatusBadRequest, "Invalid "+name)
		return "", false
	}
	return raw, true
}

// UUIDQuery reads an optional query parameter that must be a UUID when present.
// ok is false once the 400 response has been written.
func UUIDQuery(c *fiber.Ctx, name string) (string, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", true
	}
	if _, err := uuid.Parse(raw); err != nil {
		_ = Fail(c, fiber.StatusBadRequest, "Invalid "+name)
		return "", false
	}
	return raw, true
}

// StatusFor maps a service error onto an HTTP status
func StatusFor(err error) int {
	de, ok := services.AsError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch de {
	case services.ErrValidation:
		return fiber.StatusBadRequest
	case services.ErrForbidden, services.ErrTeacherMismatch:
		return fiber.StatusForbidden
	case services.ErrEventNotFound, services.ErrAttendanceNotFound, services.ErrSalaryNotFound, services.ErrCourseNotFound:
		return fiber.StatusNotFound
	case services.ErrInvalidTransition, services.ErrEventHasAttendance:
		return fiber.StatusConflict
	default:
		return fiber.StatusUnprocessableEntity
	}
}

// ServiceError writes the envelope for err. Unexpected errors are passed on to
// the app error handler so they get reported.
func ServiceError(c *fiber.Ctx, err error, op string) error {
	code := StatusFor(err)
	if code == fiber.StatusInternalServerError {
		log.Printf("[API] %s failed: %+v", op, err)
		return errors.Wrap(err, op)
	}
	de, _ := services.AsError(err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
		"reason":  de.Code,
	})
}

// TimeQuery parses an optional RFC3339 or YYYY-MM-DD query parameter
func TimeQuery(c *fiber.Ctx, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, errors.Errorf("%s must be RFC3339 or YYYY-MM-DD", name)
	}
	return &t, nil
}

// MonthQuery reads month and year, defaulting to the current month in loc
func MonthQuery(c *fiber.Ctx, loc *time.Location) (int, int) {
	now := time.Now().In(loc)
	return c.QueryInt("month", int(now.Month())), c.QueryInt("year", now.Year())
}
