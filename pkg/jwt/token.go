package jwtPkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const issuer = "liveness"

var (
	ErrMissingSecret = errors.New("attestation secret not configured")
	ErrEmptyHeader   = errors.New("empty Authorization header")
	ErrInvalidFormat = errors.New("invalid Authorization format")
	ErrNotLiveness   = errors.New("token does not attest liveness")
)

// AttestationClaims is what a confirmed liveness session hands to the client,
// so another service can check the result without calling back.
type AttestationClaims struct {
	SessionID string `json:"session_id"`
	Policy    string `json:"policy"`
	Liveness  bool   `json:"liveness"`
	jwt.RegisteredClaims
}

type IAttestation interface {
	Sign(sessionID, policy string, now time.Time) (string, *AttestationClaims, error)
	Verify(token string) (*AttestationClaims, error)
	VerifyTokenHeader(c *fiber.Ctx) (*AttestationClaims, error)
}

type attestation struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) (IAttestation, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("attestation ttl must be positive, got %s", ttl)
	}

	return &attestation{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

func (a *attestation) Sign(sessionID, policy string, now time.Time) (string, *AttestationClaims, error) {
	claims := &AttestationClaims{
		SessionID: sessionID,
		Policy:    policy,
		Liveness:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	logrus.WithField("session_id", sessionID).Debug("Signing liveness attestation")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		logrus.WithError(err).Error("Failed to sign attestation")
		return "", nil, err
	}

	return signed, claims, nil
}

func (a *attestation) Verify(raw string) (*AttestationClaims, error) {
	claims := &AttestationClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !claims.Liveness || claims.SessionID == "" {
		return nil, ErrNotLiveness
	}

	return claims, nil
}

func (a *attestation) VerifyTokenHeader(c *fiber.Ctx) (*AttestationClaims, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, ErrEmptyHeader
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		log.Debug("Authorization header without bearer token")
		return nil, ErrInvalidFormat
	}

	claims, err := a.Verify(token)
	if err != nil {
		log.WithError(err).Debug("Failed to verify attestation")
		return nil, err
	}

	return claims, nil
}
