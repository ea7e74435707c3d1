package data

import (
	"errors"

	domainauth "github.com/target/content-portal/internal/domain/auth"
	"github.com/target/content-portal/internal/domain/model"
)

// Shared sentinel errors for data-layer repositories. They alias the domain
// sentinels so callers match with errors.Is regardless of backend.
var (
	ErrAccountNotFound   = domainauth.ErrAccountNotFound
	ErrDuplicateIdentity = domainauth.ErrDuplicateIdentity
	ErrContentNotFound   = model.ErrContentNotFound

	ErrDBRequired = errors.New("database handle is required")
)
