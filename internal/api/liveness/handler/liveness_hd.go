package livenessHandler

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/internal/middleware"
	"ProjectLiveness/pkg/handlerUtil"
	"ProjectLiveness/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (h *LivenessHandler) Guide(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req liveness.GuideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, liveness.ErrInvalidArgument, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	guide, err := h.livenessService.ComputeGuide(liveness.ScreenSize{
		Width:  req.ScreenWidth,
		Height: req.ScreenHeight,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "compute_guide")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, liveness.GuideResponse{
		Data: guide,
	})
}

func (h *LivenessHandler) Classify(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req liveness.ClassifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, liveness.ErrInvalidArgument, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, guide, err := h.livenessService.Classify(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "classify_face")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"inside":     result.Inside,
		"distance":   result.Distance,
		"score":      result.Score,
	}).Debug("Face classified")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, liveness.ClassifyResponse{
		Data:  result,
		Guide: guide,
	})
}

func (h *LivenessHandler) Verify(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	claims, err := middleware.GetAttestation(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, liveness.ErrInvalidAttestation, ctx.Path(), "get_attestation")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": claims.SessionID,
	}).Info("Liveness attestation verified")

	resp := liveness.VerifyResponse{
		SessionID: claims.SessionID,
		Policy:    entity.PolicyKind(claims.Policy),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Unix()
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}
