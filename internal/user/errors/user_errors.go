package usererrors

import (
	"go-leave/internal/shared/apperror"
	"net/http"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User with the same email already exists",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be admin or employee",
		http.StatusBadRequest,
	)

	ErrAvatarRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Avatar file is required",
		http.StatusBadRequest,
	)

	ErrAvatarTooLarge = apperror.New(
		apperror.CodeTooLarge,
		"Avatar file is too large",
		http.StatusRequestEntityTooLarge,
	)

	ErrUnsupportedAvatarType = apperror.New(
		apperror.CodeInvalidInput,
		"Avatar must be a JPEG, PNG or WEBP image",
		http.StatusBadRequest,
	)
)
