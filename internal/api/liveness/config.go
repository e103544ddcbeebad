package liveness

import (
	"ProjectLiveness/internal/entity"
	"ProjectLiveness/pkg/geometry"
	"time"
)

// Config holds the fixed thresholds of the liveness flow. Values are loaded once
// at startup and shared read-only by every session.
type Config struct {
	Guide geometry.GuideParams

	DwellMs             int64   `validate:"gt=0"`
	PositionTolerancePx float64 `validate:"gte=0"`
	AngleToleranceDeg   float64 `validate:"gte=0"`
	MinFaceSize         float64 `validate:"gt=0,ltfield=MaxFaceSize"`
	MaxFaceSize         float64 `validate:"gt=0,lte=1"`
	EllipseTolerance    float64 `validate:"gte=1"`
	DebounceFrames      int     `validate:"gt=0"`

	DefaultPolicy entity.PolicyKind `validate:"oneof=snapshot debounce"`
	Mirrored      bool
	DefaultLocale string `validate:"required"`

	SessionTimeout time.Duration `validate:"gt=0"`
	TokenSecret    string
	TokenTTL       time.Duration `validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		Guide:               geometry.DefaultGuideParams(),
		DwellMs:             3000,
		PositionTolerancePx: 12,
		AngleToleranceDeg:   4,
		MinFaceSize:         0.35,
		MaxFaceSize:         0.6,
		EllipseTolerance:    1.05,
		DebounceFrames:      5,
		DefaultPolicy:       entity.PolicySnapshot,
		Mirrored:            false,
		DefaultLocale:       "en",
		SessionTimeout:      60 * time.Second,
		TokenTTL:            5 * time.Minute,
	}
}
