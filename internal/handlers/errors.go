package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
	"alfredoptarigan/mock-interviewer/internal/models"
)

// ErrorHandler renders classified errors as {error, kind, retryable}. Causes
// are logged but never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Cause != nil {
			log.Printf("❌ %s %s: %v\n", c.Method(), c.Path(), appErr)
		}
		return c.Status(appErr.HTTPStatus()).JSON(models.ErrorResponse{
			Error:     appErr.Message,
			Kind:      string(appErr.Kind),
			Retryable: appErr.Retryable(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := apperrors.KindValidation
		if fiberErr.Code == fiber.StatusNotFound {
			kind = apperrors.KindNotFound
		} else if fiberErr.Code >= fiber.StatusInternalServerError {
			kind = apperrors.KindStorage
		}
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Error: fiberErr.Message,
			Kind:  string(kind),
		})
	}

	log.Printf("❌ Unhandled error on %s %s: %v\n", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "internal server error",
		Kind:  string(apperrors.KindStorage),
	})
}
