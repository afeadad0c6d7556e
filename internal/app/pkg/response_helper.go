package pkg

import (
	"errors"
	"reflect"

	"github.com/gofiber/fiber/v2"
	appError "github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/sirupsen/logrus"
)

func SuccessResponse[T any](c *fiber.Ctx, data T) error {
	return c.JSON(models.WebResponse[T]{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse[T any](c *fiber.Ctx, data T) error {
	return c.Status(fiber.StatusCreated).JSON(models.WebResponse[T]{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse writes the failure body. It carries the stable code and never
// any entity data.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var appErr *appError.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(models.ErrorResponse{
			Success:   false,
			Error:     appErr.Message,
			Code:      appErr.Code,
			Retryable: appErr.Retryable,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := appError.CodeInvalidData
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = appError.CodeNotFound
		case fiber.StatusMethodNotAllowed:
			code = appError.CodeInvalidAction
		}
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Success: false,
			Error:   fiberErr.Message,
			Code:    code,
		})
	}

	logrus.Errorf("[%s] %s", reflect.TypeOf(err).String(), err)

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Success: false,
		Error:   "Internal Server Error",
		Code:    appError.CodeInternalError,
	})
}
