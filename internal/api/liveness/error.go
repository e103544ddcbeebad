package liveness

import (
	"ProjectLiveness/pkg/response"
	"net/http"
)

var (
	ErrInvalidArgument     = response.NewError(http.StatusBadRequest, "invalid argument")
	ErrInvalidPolicy       = response.NewError(http.StatusBadRequest, "unknown stability policy")
	ErrSessionClosed       = response.NewError(http.StatusGone, "liveness session closed")
	ErrInvalidAttestation  = response.NewError(http.StatusUnauthorized, "invalid liveness attestation")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
