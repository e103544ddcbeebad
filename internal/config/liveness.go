package config

import (
	"ProjectLiveness/internal/api/liveness"
	"ProjectLiveness/internal/entity"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type RateLimit struct {
	RPS   float64 `validate:"gt=0"`
	Burst int     `validate:"gt=0"`
}

// LoadLivenessConfig reads the LIVENESS_* variables on top of the defaults and
// validates the result. A malformed value is an error, not a silent default.
func LoadLivenessConfig(v *validator.Validate) (liveness.Config, error) {
	cfg := liveness.DefaultConfig()
	var err error

	if cfg.DwellMs, err = envInt64("LIVENESS_DWELL_MS", cfg.DwellMs); err != nil {
		return cfg, err
	}
	if cfg.PositionTolerancePx, err = envFloat("LIVENESS_POSITION_TOLERANCE_PX", cfg.PositionTolerancePx); err != nil {
		return cfg, err
	}
	if cfg.AngleToleranceDeg, err = envFloat("LIVENESS_ANGLE_TOLERANCE_DEG", cfg.AngleToleranceDeg); err != nil {
		return cfg, err
	}
	if cfg.MinFaceSize, err = envFloat("LIVENESS_MIN_FACE_SIZE", cfg.MinFaceSize); err != nil {
		return cfg, err
	}
	if cfg.MaxFaceSize, err = envFloat("LIVENESS_MAX_FACE_SIZE", cfg.MaxFaceSize); err != nil {
		return cfg, err
	}
	if cfg.EllipseTolerance, err = envFloat("LIVENESS_ELLIPSE_TOLERANCE", cfg.EllipseTolerance); err != nil {
		return cfg, err
	}
	debounce, err := envInt64("LIVENESS_DEBOUNCE_FRAMES", int64(cfg.DebounceFrames))
	if err != nil {
		return cfg, err
	}
	cfg.DebounceFrames = int(debounce)
	if cfg.Mirrored, err = envBool("LIVENESS_MIRRORED", cfg.Mirrored); err != nil {
		return cfg, err
	}
	if cfg.SessionTimeout, err = envDuration("LIVENESS_SESSION_TIMEOUT", cfg.SessionTimeout); err != nil {
		return cfg, err
	}
	if cfg.TokenTTL, err = envDuration("LIVENESS_TOKEN_TTL", cfg.TokenTTL); err != nil {
		return cfg, err
	}

	if policy := os.Getenv("LIVENESS_DEFAULT_POLICY"); policy != "" {
		cfg.DefaultPolicy = entity.PolicyKind(policy)
	}
	if locale := os.Getenv("LIVENESS_DEFAULT_LOCALE"); locale != "" {
		cfg.DefaultLocale = locale
	}
	cfg.TokenSecret = os.Getenv("LIVENESS_TOKEN_SECRET")

	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid liveness configuration: %w", err)
	}

	return cfg, nil
}

func LoadRateLimit(v *validator.Validate) (RateLimit, error) {
	rl := RateLimit{RPS: 50, Burst: 100}
	var err error

	if rl.RPS, err = envFloat("RATE_LIMIT_RPS", rl.RPS); err != nil {
		return rl, err
	}
	burst, err := envInt64("RATE_LIMIT_BURST", int64(rl.Burst))
	if err != nil {
		return rl, err
	}
	rl.Burst = int(burst)

	if err := v.Struct(rl); err != nil {
		return rl, fmt.Errorf("invalid rate limit configuration: %w", err)
	}

	return rl, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envInt64(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
