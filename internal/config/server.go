package config

import (
	livenessHandler "ProjectLiveness/internal/api/liveness/handler"
	livenessService "ProjectLiveness/internal/api/liveness/service"
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/middleware"
	jwtPkg "ProjectLiveness/pkg/jwt"
	"ProjectLiveness/pkg/utils"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	liveness    liveness.Config
	rateLimit   RateLimit
	attestation jwtPkg.IAttestation
	handlers    []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		liveness:  liveness.DefaultConfig(),
		rateLimit: RateLimit{RPS: 50, Burst: 100},
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithLivenessConfig loads the liveness thresholds and rate limits from the
// environment. It needs WithValidator first.
func WithLivenessConfig() ServerOption {
	return func(s *Server) error {
		if s.validator == nil {
			return fmt.Errorf("validator must be initialized before liveness config")
		}

		cfg, err := LoadLivenessConfig(s.validator)
		if err != nil {
			return err
		}
		rl, err := LoadRateLimit(s.validator)
		if err != nil {
			return err
		}

		s.liveness = cfg
		s.rateLimit = rl
		return nil
	}
}

// WithAttestation sets up token signing. Without LIVENESS_TOKEN_SECRET a random
// secret is generated, so tokens stop verifying after a restart.
func WithAttestation() ServerOption {
	return func(s *Server) error {
		secret := s.liveness.TokenSecret
		if secret == "" {
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("failed to generate attestation secret: %w", err)
			}
			secret = hex.EncodeToString(buf)
			if s.log != nil {
				s.log.Warn("LIVENESS_TOKEN_SECRET not set, using an ephemeral secret")
			}
		}

		attestation, err := jwtPkg.New(secret, s.liveness.TokenTTL)
		if err != nil {
			return fmt.Errorf("failed to create attestation signer: %w", err)
		}
		s.attestation = attestation
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.attestation == nil {
			return fmt.Errorf("attestation must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.attestation, s.rateLimit.RPS, s.rateLimit.Burst)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	if s.utils == nil {
		s.utils = utils.New()
	}

	// Liveness Domain
	livenessServices := livenessService.NewLivenessService(s.log, s.liveness, s.utils)
	livenessHandlers := livenessHandler.New(s.log, s.validator, s.middleware, livenessServices, s.attestation, s.utils)

	s.handlers = append(s.handlers, livenessHandlers)

	s.log.WithFields(logrus.Fields{
		"dwell_ms":        s.liveness.DwellMs,
		"default_policy":  s.liveness.DefaultPolicy,
		"mirrored":        s.liveness.Mirrored,
		"session_timeout": s.liveness.SessionTimeout.String(),
	}).Info("Liveness handlers registered")
}

func (s *Server) mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.setupHealthCheck()

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	s.mount()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.mount()
	return s.engine.Listener(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.engine.ShutdownWithContext(ctx)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
