package auth

import "errors"

// Sentinel errors for authentication and directory operations.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPendingApproval      = errors.New("account pending approval")
	ErrDuplicateIdentity    = errors.New("identity already registered")
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAccountNotFound      = errors.New("account not found")
	ErrSecretMismatch       = errors.New("secret confirmation does not match")
	ErrUnknownPage          = errors.New("page is not in the catalog")
	ErrIncompleteAccount    = errors.New("account fields incomplete for creation")
	ErrInvalidRegistration  = errors.New("display name, email and password are required")
)

// User-facing messages shown by the login and registration surfaces.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgPendingApproval    = "Your account is waiting for admin approval."
	MsgDuplicateIdentity  = "Email already registered"
	MsgSecretMismatch     = "Passwords do not match"
	MsgLoginSuccess       = "Login successful"
	MsgRegisterSuccess    = "Registration successful. Please wait for admin approval."
	MsgAccessDenied       = "You do not have permission to access this page."
	MsgDirectoryDown      = "The user directory is unavailable. Please try again."
	MsgRegistrationFields = "Name, email and password are required"
)
