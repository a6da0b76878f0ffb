package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"image-converter/pkg/errors/i18n"
)

func HandleError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if err == nil {
		return nil
	}

	var je *JobError
	if stderrors.As(err, &je) {
		if je.Err != nil {
			logger.Debug("request failed", zap.String("code", string(je.Code)), zap.Error(je.Err))
		}

		var status int
		switch je.Code {
		case CodeNotFound:
			status = fiber.StatusNotFound
		case CodeValidation, CodeInvalidState:
			status = fiber.StatusBadRequest
		default:
			status = fiber.StatusInternalServerError
		}

		return c.Status(status).JSON(fiber.Map{
			"error":   je.Code,
			"message": localized(je),
		})
	}

	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   "request_error",
			"message": fe.Message,
		})
	}

	logger.Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   CodeInternal,
		"message": i18n.T(string(CodeInternal), "Something went wrong"),
	})
}

// localized is Describe with the top level message taken from the active catalog.
func localized(je *JobError) string {
	msg := i18n.T(string(je.Code), je.Message)
	if je.Err != nil {
		return fmt.Sprintf("%s: %v", msg, je.Err)
	}
	return msg
}
