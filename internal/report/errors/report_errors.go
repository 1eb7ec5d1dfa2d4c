package reporterrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from must be before or equal to",
		http.StatusBadRequest,
	)
	ErrDepartmentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"department is required",
		http.StatusBadRequest,
	)
	ErrReportForbidden = apperror.New(
		apperror.CodeForbidden,
		"you may not view reports for this department",
		http.StatusForbidden,
	)
)
