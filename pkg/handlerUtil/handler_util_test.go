package handlerUtil

import (
	"ProjectLiveness/internal/api/liveness"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func TestErrorHandler_Handle(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
		wantTrace  bool
	}{
		{"wrapped invalid argument", fmt.Errorf("%w: width must be positive", liveness.ErrInvalidArgument), 400, "INVALID_ARGUMENT", "invalid argument", false},
		{"invalid policy", liveness.ErrInvalidPolicy, 400, "INVALID_POLICY", "unknown stability policy", false},
		{"closed session", liveness.ErrSessionClosed, 410, "SESSION_CLOSED", "liveness session closed", false},
		{"bad attestation", liveness.ErrInvalidAttestation, 401, "INVALID_ATTESTATION", "invalid liveness attestation", false},
		{"internal", liveness.ErrInternalServerError, 500, "INTERNAL_ERROR", "Internal server error", true},
		{"plain error", errors.New("disk on fire"), 500, "INTERNAL_ERROR", "An unexpected error occurred", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tt.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
			if tt.wantTrace {
				assert.Equal(t, "trace_id: req-1", body.Details)
			} else {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestErrorHandler_HandleUnauthorized(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	tests := []struct {
		name string
		err  error
		want ErrorResponse
	}{
		{
			"attestation failure",
			fmt.Errorf("%w: %w", liveness.ErrInvalidAttestation, errors.New("token is expired")),
			ErrorResponse{Error: "invalid liveness attestation", Code: "INVALID_ATTESTATION"},
		},
		{
			"plain error",
			errors.New("no credentials"),
			ErrorResponse{Error: "Unauthorized", Code: "UNAUTHORIZED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.HandleUnauthorized(c, "req-1", tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.want, body)
		})
	}
}
