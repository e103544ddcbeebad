package handlerUtil

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/pkg/log"
	"ProjectLiveness/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// ErrorCode maps a liveness error to the machine readable code sent to
// clients, both in HTTP bodies and websocket error frames.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, liveness.ErrInvalidPolicy):
		return "INVALID_POLICY"
	case errors.Is(err, liveness.ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, liveness.ErrSessionClosed):
		return "SESSION_CLOSED"
	case errors.Is(err, liveness.ErrInvalidAttestation):
		return "INVALID_ATTESTATION"
	default:
		return "INTERNAL_ERROR"
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields := log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}
		if respErr.Code >= fiber.StatusInternalServerError {
			traceID := log.ErrorWithTraceID(fields, "Operation failed with server error")
			return c.Status(respErr.Code).JSON(ErrorResponse{
				Error:   "Internal server error",
				Code:    ErrorCode(err),
				Details: "trace_id: " + traceID,
			})
		}

		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: respErr.Err.Error(),
			Code:  ErrorCode(err),
		})
	}

	traceID := log.ErrorWithTraceID(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
		Details: "trace_id: " + traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

// HandleUnauthorized answers 401. A response error inside err supplies the
// message and code; anything else gets the generic status text.
func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, err error) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"client_ip":  c.IP(),
		"error":      err.Error(),
	}).Warn("Unauthorized access")

	body := ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusUnauthorized),
		Code:  "UNAUTHORIZED",
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		body.Error = respErr.Err.Error()
		body.Code = ErrorCode(err)
	}

	return c.Status(fiber.StatusUnauthorized).JSON(body)
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
