package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidActor = apperror.New(
		apperror.CodeUnauthorized,
		"caller identity is missing",
		http.StatusUnauthorized,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type is not a configured leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidReason = apperror.New(
		apperror.CodeInvalidInput,
		"reason must be between 5 and 500 characters",
		http.StatusBadRequest,
	)
	ErrInvalidAttachment = apperror.New(
		apperror.CodeInvalidInput,
		"attachment name and location are required",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave status",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when rejecting a leave request",
		http.StatusBadRequest,
	)
	ErrQuestionRequired = apperror.New(
		apperror.CodeInvalidInput,
		"question is required when requesting more information",
		http.StatusBadRequest,
	)
	ErrResponseRequired = apperror.New(
		apperror.CodeInvalidInput,
		"response is required",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusConflict,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requesting employee can perform this action",
		http.StatusForbidden,
	)
	ErrReviewerRequired = apperror.New(
		apperror.CodeForbidden,
		"reviewer or admin role is required",
		http.StatusForbidden,
	)
	ErrDepartmentForbidden = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another department",
		http.StatusForbidden,
	)
)
