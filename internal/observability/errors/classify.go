// Package errors derives metric-safe labels from errors.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	domainauth "github.com/target/content-portal/internal/domain/auth"
)

var knownClasses = []struct {
	err   error
	class string
}{
	{domainauth.ErrInvalidCredentials, "invalid_credentials"},
	{domainauth.ErrPendingApproval, "pending_approval"},
	{domainauth.ErrDuplicateIdentity, "duplicate_identity"},
	{domainauth.ErrSecretMismatch, "secret_mismatch"},
	{domainauth.ErrInvalidRegistration, "invalid_registration"},
	{domainauth.ErrDirectoryUnavailable, "directory_unavailable"},
	{domainauth.ErrAccountNotFound, "account_not_found"},
	{domainauth.ErrUnknownPage, "unknown_page"},
}

// Classify returns a low-cardinality label for err. Domain sentinels map to fixed names;
// anything else is named after the first concrete type beneath any fmt or errors wrappers.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range knownClasses {
		if goerrors.Is(err, k.err) {
			return k.class
		}
	}

	for isPureWrapper(err) {
		next := unwrapFirst(err)
		if next == nil {
			break
		}
		err = next
	}

	t := elemType(err)
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}

// isPureWrapper reports whether err only adds context to a cause, as
// fmt.Errorf and errors.Join results do.
func isPureWrapper(err error) bool {
	t := elemType(err)
	if t == nil {
		return false
	}
	switch t.PkgPath() {
	case "fmt", "errors":
		return true
	}
	return false
}

func unwrapFirst(err error) error {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap()
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if e != nil {
				return e
			}
		}
	}
	return nil
}

func elemType(err error) reflect.Type {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
