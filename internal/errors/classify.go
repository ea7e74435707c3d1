package errors

import (
	"errors"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/domain/model"
)

// Classify converts domain and data-layer failures into an AppError with a
// user-facing message. AppErrors already in the chain are returned as-is.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		return Wrap(err, ErrCodeUnauthorized, domainauth.MsgInvalidCredentials)
	case errors.Is(err, domainauth.ErrPendingApproval):
		return Wrap(err, ErrCodeForbidden, domainauth.MsgPendingApproval)
	case errors.Is(err, domainauth.ErrPermissionDenied):
		return Wrap(err, ErrCodeForbidden, domainauth.MsgAccessDenied)
	case errors.Is(err, domainauth.ErrDuplicateIdentity):
		return Wrap(err, ErrCodeConflict, domainauth.MsgDuplicateIdentity)
	case errors.Is(err, domainauth.ErrSecretMismatch):
		return Wrap(err, ErrCodeValidation, domainauth.MsgSecretMismatch)
	case errors.Is(err, domainauth.ErrInvalidRegistration):
		return Wrap(err, ErrCodeValidation, domainauth.MsgRegistrationFields)
	case errors.Is(err, domainauth.ErrUnknownPage):
		return Wrap(err, ErrCodeValidation, "One or more pages are not in the catalog.")
	case errors.Is(err, model.ErrInvalidContent):
		return Wrap(err, ErrCodeValidation, "Invalid content item.")
	case errors.Is(err, domainauth.ErrAccountNotFound):
		return Wrap(err, ErrCodeNotFound, "Account not found")
	case errors.Is(err, model.ErrContentNotFound):
		return Wrap(err, ErrCodeNotFound, "Content item not found")
	case errors.Is(err, domainauth.ErrDirectoryUnavailable):
		return Wrap(err, ErrCodeUnavailable, domainauth.MsgDirectoryDown)
	}

	if mapped, ok := MapDBError(err).(*AppError); ok {
		return mapped
	}
	return Wrap(err, ErrCodeInternal, "Internal server error")
}
