// Package businessflow contains the core business logic and use cases for membership workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountNotCorporate  = errors.New("account is not a corporate account")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidStatus        = errors.New("invalid account status")
	ErrInvalidStatusChange  = errors.New("status change not allowed")
	ErrAccountFieldRequired = errors.New("required account field is missing")

	// Resolution errors. Not-found means no record carries the id anywhere;
	// resolution-failed means a lookup could not complete.
	ErrMemberNotFound   = errors.New("member not found")
	ErrResolutionFailed = errors.New("member resolution failed")

	// Roster errors
	ErrMemberAlreadyInRoster  = errors.New("member already in organization roster")
	ErrMemberNotInRoster      = errors.New("member not in organization roster")
	ErrMemberIDCollision      = errors.New("member id already used by another record")
	ErrLastAdministrator      = errors.New("cannot remove the last account administrator")
	ErrMemberEmailRequired    = errors.New("member email is required")
	ErrMemberNameRequired     = errors.New("member name is required")
	ErrOrganizationIDRequired = errors.New("organization id is required")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrCaptchaInvalid    = errors.New("captcha challenge failed")
	ErrCacheNotAvailable = errors.New("cache not available")

	// Task errors
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrNoteNotCompletable   = errors.New("notes have no completion state")
	ErrTaskTitleRequired    = errors.New("task title is required")

	// Directory and export errors
	ErrExportTooLarge = errors.New("export exceeds the row cap")
	ErrUnknownOrgType = errors.New("unknown organization type")
	ErrUnknownAccess  = errors.New("unknown access level")
	ErrStatusRequired = errors.New("status is required")

	// Logo errors
	ErrLogoTooLarge        = errors.New("logo exceeds the size limit")
	ErrLogoUnsupportedType = errors.New("logo file type not supported")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountNotCorporate(err error) bool {
	return errors.Is(err, ErrAccountNotCorporate)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsInvalidStatus(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

func IsInvalidStatusChange(err error) bool {
	return errors.Is(err, ErrInvalidStatusChange)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsResolutionFailed(err error) bool {
	return errors.Is(err, ErrResolutionFailed)
}

func IsMemberAlreadyInRoster(err error) bool {
	return errors.Is(err, ErrMemberAlreadyInRoster)
}

func IsMemberNotInRoster(err error) bool {
	return errors.Is(err, ErrMemberNotInRoster)
}

func IsMemberIDCollision(err error) bool {
	return errors.Is(err, ErrMemberIDCollision)
}

func IsLastAdministrator(err error) bool {
	return errors.Is(err, ErrLastAdministrator)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsCaptchaInvalid(err error) bool {
	return errors.Is(err, ErrCaptchaInvalid)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsTaskNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

func IsTaskAlreadyCompleted(err error) bool {
	return errors.Is(err, ErrTaskAlreadyCompleted)
}

func IsNoteNotCompletable(err error) bool {
	return errors.Is(err, ErrNoteNotCompletable)
}

func IsExportTooLarge(err error) bool {
	return errors.Is(err, ErrExportTooLarge)
}

func IsUnknownOrgType(err error) bool {
	return errors.Is(err, ErrUnknownOrgType)
}

func IsLogoTooLarge(err error) bool {
	return errors.Is(err, ErrLogoTooLarge)
}

func IsLogoUnsupportedType(err error) bool {
	return errors.Is(err, ErrLogoUnsupportedType)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
