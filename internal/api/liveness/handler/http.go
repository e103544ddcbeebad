package livenessHandler

import (
	"ProjectLiveness/internal/api/liveness"
	livenessService "ProjectLiveness/internal/api/liveness/service"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/internal/middleware"
	"ProjectLiveness/pkg/handlerUtil"
	jwtPkg "ProjectLiveness/pkg/jwt"
	"ProjectLiveness/pkg/log"
	"ProjectLiveness/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const sessionParamsKey = "liveness_session_params"

type LivenessHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	livenessService livenessService.ILivenessService
	attestation     jwtPkg.IAttestation
	utils           utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ls livenessService.ILivenessService,
	attestation jwtPkg.IAttestation,
	utils utils.IUtils,
) *LivenessHandler {
	return &LivenessHandler{
		log:             log,
		validator:       validator,
		middleware:      middleware,
		livenessService: ls,
		attestation:     attestation,
		utils:           utils,
	}
}

func (h *LivenessHandler) Start(srv fiber.Router) {
	group := srv.Group("/liveness")
	group.Use(h.middleware.NewRateLimiter)

	group.Post("/guide", h.Guide)
	group.Post("/classify", h.Classify)
	group.Post("/verify", h.middleware.NewAttestationMiddleware, h.Verify)

	group.Use("/ws", h.sessionMiddleware)
	group.Get("/ws", websocket.New(h.handleSession))
}

// sessionMiddleware validates the session query before the upgrade so a bad
// request gets a plain HTTP error instead of an opened and closed socket.
func (h *LivenessHandler) sessionMiddleware(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req liveness.SessionRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	mirrored, err := h.utils.ParseOptionalBool(req.Mirrored)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	var policy entity.PolicyKind
	if req.Policy != "" {
		kind, ok := entity.PolicyKindMap[req.Policy]
		if !ok {
			return errHandler.Handle(ctx, requestID, liveness.ErrInvalidPolicy, ctx.Path(), "liveness.session")
		}
		policy = kind
	}

	params := livenessService.SessionParams{
		Screen:    liveness.ScreenSize{Width: req.ScreenWidth, Height: req.ScreenHeight},
		Policy:    policy,
		Mirrored:  mirrored,
		Languages: []string{req.Lang, ctx.Get(fiber.HeaderAcceptLanguage)},
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"policy":     params.Policy,
		"screen_w":   req.ScreenWidth,
		"screen_h":   req.ScreenHeight,
	}).Debug("Upgrading liveness session")

	ctx.Locals(sessionParamsKey, params)
	return ctx.Next()
}
