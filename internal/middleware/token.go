package middleware

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/pkg/handlerUtil"
	jwtPkg "ProjectLiveness/pkg/jwt"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const AttestationKey = "attestation"

// NewAttestationMiddleware admits requests carrying a valid liveness
// attestation and stores its claims under AttestationKey.
func (m *middleware) NewAttestationMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)

	claims, err := m.attestation.VerifyTokenHeader(ctx)
	if err != nil {
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, requestID, fmt.Errorf("%w: %w", liveness.ErrInvalidAttestation, err))
	}

	m.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": claims.SessionID,
	}).Debug("Attestation verified")

	ctx.Locals(AttestationKey, claims)
	return ctx.Next()
}

func GetAttestation(ctx *fiber.Ctx) (*jwtPkg.AttestationClaims, error) {
	claims, ok := ctx.Locals(AttestationKey).(*jwtPkg.AttestationClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
