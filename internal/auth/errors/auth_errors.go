package autherrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"Invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"Token has expired",
		http.StatusUnauthorized,
	)
	ErrSigningKeyMissing = apperror.New(
		apperror.CodeInternalError,
		"Token signing key is not configured",
		http.StatusInternalServerError,
	)
	ErrMissingClaim = apperror.New(
		"INVALID_TOKEN",
		"Employee ID not found in token",
		http.StatusUnauthorized,
	)
)
