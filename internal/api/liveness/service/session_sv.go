package livenessService

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
	"ProjectLiveness/pkg/i18n"
	"ProjectLiveness/pkg/mailbox"
	"fmt"
)

type SessionOption func(*Session)

// WithSuccessHook registers fn to run once, on the frame that confirms liveness,
// before that frame's status is published. fn may enrich the status.
func WithSuccessHook(fn func(*entity.Status)) SessionOption {
	return func(s *Session) {
		s.onSuccess = fn
	}
}

func WithCatalog(catalog i18n.Catalog) SessionOption {
	return func(s *Session) {
		s.catalog = catalog
	}
}

// Session drives one liveness attempt. ProcessFrame, UpdateScreen, Reset and
// Expire must all be called from the single goroutine that receives frames;
// the UI side only reads Statuses().
type Session struct {
	id         string
	cfg        liveness.Config
	classifier *Classifier
	policy     StabilityPolicy
	guide      geometry.Guide
	catalog    i18n.Catalog
	statuses   *mailbox.Latest[entity.Status]
	onSuccess  func(*entity.Status)

	seq       uint64
	succeeded bool
	last      entity.Status
}

func newSession(id string, cfg liveness.Config, guide geometry.Guide, classifier *Classifier, policy StabilityPolicy, opts ...SessionOption) *Session {
	s := &Session{
		id:         id,
		cfg:        cfg,
		classifier: classifier,
		policy:     policy,
		guide:      guide,
		catalog:    i18n.Lookup(cfg.DefaultLocale),
		statuses:   mailbox.New[entity.Status](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string                                { return s.id }
func (s *Session) Guide() geometry.Guide                     { return s.guide }
func (s *Session) Policy() entity.PolicyKind                 { return s.policy.Name() }
func (s *Session) Phase() entity.Phase                       { return s.policy.Phase() }
func (s *Session) Succeeded() bool                           { return s.succeeded }
func (s *Session) Language() string                          { return s.catalog.Language() }
func (s *Session) Statuses() *mailbox.Latest[entity.Status] { return s.statuses }
func (s *Session) Last() entity.Status                       { return s.last }

// ProcessFrame runs one detector result through classification and the
// stability policy, publishes the resulting status and returns it. Only the
// first face of a multi-face frame is used.
func (s *Session) ProcessFrame(obs entity.FrameObservation) (entity.Status, error) {
	if s.statuses.Closed() {
		return entity.Status{}, liveness.ErrSessionClosed
	}
	if obs.Frame.Width <= 0 || obs.Frame.Height <= 0 {
		return entity.Status{}, fmt.Errorf("%w: frame size %.0fx%.0f", liveness.ErrInvalidArgument, obs.Frame.Width, obs.Frame.Height)
	}

	status := s.newStatus(obs.TimestampMs)

	if len(obs.Faces) == 0 {
		if !s.policy.Phase().Terminal() {
			s.policy.Reset()
		}
		status.Phase = s.policy.Phase()
		status.Feedback = entity.FeedbackNoFace
		if status.Phase.Terminal() {
			status.Feedback = entity.FeedbackConfirmed
			status.Progress = 1
		}
		return s.publish(status), nil
	}

	face := obs.Faces[0]
	c, err := s.classifier.Classify(face, s.guide.Normalized, obs.Frame)
	if err != nil {
		return entity.Status{}, err
	}

	result := s.policy.Evaluate(face, c, obs.TimestampMs)

	status.FaceFound = true
	status.Result = &c
	status.Phase = result.Phase
	status.Feedback = result.Feedback
	status.Progress = result.Progress

	if result.SuccessFired && !s.succeeded {
		s.succeeded = true
		if s.onSuccess != nil {
			s.onSuccess(&status)
		}
	}

	return s.publish(status), nil
}

// UpdateScreen recomputes the guide, e.g. after a rotation. Progress is kept.
func (s *Session) UpdateScreen(width, height float64) error {
	guide, err := geometry.ComputeGuide(width, height, s.cfg.Guide)
	if err != nil {
		return fmt.Errorf("%w: %w", liveness.ErrInvalidArgument, err)
	}
	s.guide = guide
	return nil
}

// Reset starts the attempt over from POSITION, including after success.
func (s *Session) Reset() {
	s.policy.Reset()
	s.succeeded = false
}

// Expire publishes a timeout status unless liveness was already confirmed.
// It reports whether a timeout was published.
func (s *Session) Expire(nowMs int64) bool {
	if s.succeeded || s.statuses.Closed() {
		return false
	}

	status := s.newStatus(nowMs)
	status.Phase = s.policy.Phase()
	status.Feedback = entity.FeedbackTimeout
	s.publish(status)
	return true
}

func (s *Session) Close() {
	s.statuses.Close()
}

func (s *Session) newStatus(nowMs int64) entity.Status {
	s.seq++
	return entity.Status{
		SessionID:   s.id,
		Seq:         s.seq,
		TimestampMs: nowMs,
		Policy:      s.policy.Name(),
	}
}

func (s *Session) publish(status entity.Status) entity.Status {
	status.Message = s.catalog.Message(string(status.Feedback))
	s.last = status
	s.statuses.Publish(status)
	return status
}
