package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrUserRequired = apperror.RequiredField("user_id")

	ErrLeaveTypeRequired = apperror.RequiredField("leave_type")

	ErrDatesRequired = apperror.RequiredField("dates")

	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"leave_type must be one of full-day, half-day, short-leave",
		http.StatusBadRequest,
	)
	ErrInvalidHalfDayType = apperror.New(
		apperror.CodeValidation,
		"half_day_type must be first-half or second-half",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approver id",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrApproverNotFound = apperror.New(
		apperror.CodeNotFound,
		"approver not found",
		http.StatusNotFound,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrProofNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave has no proof document",
		http.StatusNotFound,
	)
	ErrProofTooLarge = apperror.New(
		apperror.CodeTooLarge,
		"proof document is too large",
		http.StatusRequestEntityTooLarge,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"status must be Approved or Rejected",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave is no longer pending",
		http.StatusConflict,
	)
	ErrStatusChanged = apperror.New(
		apperror.CodeConflict,
		"leave status was changed by another request",
		http.StatusConflict,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you can only access your own leave requests",
		http.StatusForbidden,
	)
)
