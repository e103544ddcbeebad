package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
	"ProjectLiveness/pkg/i18n"
	"ProjectLiveness/pkg/utils"
	"fmt"
	"github.com/sirupsen/logrus"
	"time"
)

type ILivenessService interface {
	ComputeGuide(screen liveness.ScreenSize) (geometry.Guide, error)
	Classify(req liveness.ClassifyRequest) (entity.Classification, geometry.Guide, error)
	NewSession(params SessionParams, opts ...SessionOption) (*Session, error)
	Config() liveness.Config
}

type SessionParams struct {
	Screen    liveness.ScreenSize
	Policy    entity.PolicyKind
	Mirrored  *bool
	Languages []string
}

type livenessService struct {
	log   *logrus.Logger
	cfg   liveness.Config
	utils utils.IUtils
}

func NewLivenessService(log *logrus.Logger, cfg liveness.Config, utils utils.IUtils) ILivenessService {
	return &livenessService{
		log:   log,
		cfg:   cfg,
		utils: utils,
	}
}

func (s *livenessService) Config() liveness.Config {
	return s.cfg
}

func (s *livenessService) ComputeGuide(screen liveness.ScreenSize) (geometry.Guide, error) {
	guide, err := geometry.ComputeGuide(screen.Width, screen.Height, s.cfg.Guide)
	if err != nil {
		return geometry.Guide{}, fmt.Errorf("%w: %w", liveness.ErrInvalidArgument, err)
	}
	return guide, nil
}

func (s *livenessService) Classify(req liveness.ClassifyRequest) (entity.Classification, geometry.Guide, error) {
	guide, err := s.ComputeGuide(req.Screen)
	if err != nil {
		return entity.Classification{}, geometry.Guide{}, err
	}

	mirrored := s.cfg.Mirrored
	if req.Mirrored != nil {
		mirrored = *req.Mirrored
	}

	c, err := NewClassifier(s.cfg, mirrored).Classify(req.Face, guide.Normalized, req.Frame)
	if err != nil {
		return entity.Classification{}, geometry.Guide{}, err
	}

	return c, guide, nil
}

func (s *livenessService) NewSession(params SessionParams, opts ...SessionOption) (*Session, error) {
	guide, err := s.ComputeGuide(params.Screen)
	if err != nil {
		return nil, err
	}

	kind := params.Policy
	if kind == "" {
		kind = s.cfg.DefaultPolicy
	}
	policy, err := NewStabilityPolicy(kind, s.cfg)
	if err != nil {
		return nil, err
	}

	mirrored := s.cfg.Mirrored
	if params.Mirrored != nil {
		mirrored = *params.Mirrored
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	languages := append(append([]string{}, params.Languages...), s.cfg.DefaultLocale)
	opts = append([]SessionOption{WithCatalog(i18n.Lookup(languages...))}, opts...)

	session := newSession(id, s.cfg, guide, NewClassifier(s.cfg, mirrored), policy, opts...)

	s.log.WithFields(logrus.Fields{
		"session_id": id,
		"policy":     kind,
		"mirrored":   mirrored,
		"language":   session.Language(),
		"guide_w":    guide.Width,
		"guide_h":    guide.Height,
	}).Debug("Liveness session created")

	return session, nil
}
