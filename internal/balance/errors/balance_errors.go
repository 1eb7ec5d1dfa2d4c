package balanceerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrUntrackedLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave type has no configured quota",
		http.StatusBadRequest,
	)
	ErrNegativeTotal = apperror.New(
		apperror.CodeInvalidInput,
		"total must not be negative",
		http.StatusBadRequest,
	)
	ErrTotalBelowUsed = apperror.New(
		apperror.CodeInvalidInput,
		"total must not be below days already used",
		http.StatusBadRequest,
	)
	ErrBalanceForbidden = apperror.New(
		apperror.CodeForbidden,
		"you may not access this balance",
		http.StatusForbidden,
	)
)
